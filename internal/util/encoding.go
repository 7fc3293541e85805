package util

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type legacyEncoding struct {
	name string
	enc  encoding.Encoding
}

// legacyEncodings 配置导出常见的非 UTF-8 编码（按尝试顺序）
var legacyEncodings = []legacyEncoding{
	{"gb18030", simplifiedchinese.GB18030},
	{"gbk", simplifiedchinese.GBK},
	{"big5", traditionalchinese.Big5},
	{"windows-1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
}

// DecodeDocument 将配置文件字节转为 UTF-8 文本，返回所用编码名
// 已是 UTF-8 时去掉 BOM 原样返回；所有编码都失败时按原始字节返回
func DecodeDocument(b []byte) (string, string) {
	if len(b) == 0 {
		return "", "utf-8"
	}
	b = bytes.TrimPrefix(b, utf8BOM)
	if utf8.Valid(b) {
		return string(b), "utf-8"
	}
	candidates := legacyEncodings
	if isolatedHighBytes(b) {
		candidates = latinFirst
	}
	for _, le := range candidates {
		if s, ok := tryDecode(le.enc, b); ok {
			return s, le.name
		}
	}
	return string(b), "raw"
}

// latinFirst 单字节西文文本的尝试顺序
var latinFirst = []legacyEncoding{
	{"windows-1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
	{"gb18030", simplifiedchinese.GB18030},
	{"gbk", simplifiedchinese.GBK},
	{"big5", traditionalchinese.Big5},
}

// isolatedHighBytes 所有 >=0x80 的字节前后都是 ASCII 时视为单字节西文编码
// GB2312 汉字两个字节都 >=0xA1，连续中文文本的高位字节总会相邻出现
func isolatedHighBytes(b []byte) bool {
	for i, c := range b {
		if c < 0x80 {
			continue
		}
		if (i > 0 && b[i-1] >= 0x80) || (i+1 < len(b) && b[i+1] >= 0x80) {
			return false
		}
	}
	return true
}

func tryDecode(enc encoding.Encoding, b []byte) (string, bool) {
	reader := transform.NewReader(bytes.NewReader(b), enc.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(decoded) || bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", false
	}
	return string(decoded), true
}
