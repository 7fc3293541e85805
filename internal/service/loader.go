package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sshcollectorpro/configparser/internal/util"
	"github.com/sshcollectorpro/configparser/pkg/logger"
)

// LoadDocument 读取整份配置文件并转为 UTF-8 文本
// 先检查文件是否存在，不存在时返回 NotFoundError
func LoadDocument(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{Path: path}
		}
		return "", &UnexpectedError{Op: "stat " + path, Err: err}
	}
	if info.IsDir() {
		return "", &UnexpectedError{Op: "read " + path, Err: fmt.Errorf("is a directory")}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", &UnexpectedError{Op: "read " + path, Err: err}
	}

	text, enc := util.DecodeDocument(b)
	if enc != "utf-8" {
		logger.WithField("source", path).Infof("Config decoded from %s", enc)
	}
	return text, nil
}
