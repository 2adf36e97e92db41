// Package xconf 基于 koanf 加载 YAML/JSON 配置，并支持文件变更后自动重载。
//
//	l, err := xconf.New("/etc/ontoimport/config.yaml")
//	var cfg AppConfig
//	err = l.Unmarshal("", &cfg)
//
//	go xconf.Watch(ctx, l, func(l *xconf.Loader, err error) {
//		// 重新读取需要热更新的字段，如日志级别
//	})
//
// 结构体字段使用 koanf 标签映射，time.Duration 字段支持 "30s" 形式的字符串。
package xconf
