// Package xfile 提供收件目录使用的文件操作。
//
// MoveInto 将文件移动到目标目录：目标目录不存在时创建，同名文件已存在时
// 追加序号（a.nt → a.1.nt），跨文件系统时退化为复制后删除。
// JoinBase 将文件名限制在目录内，拒绝 ".." 穿越和空字节。
package xfile
