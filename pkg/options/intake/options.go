// Package intake provides file intake directory options.
package intake

import (
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"

	"github.com/kart-io/naughty-assistant/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Options 上传与知识库目录配置。
type Options struct {
	// UploadDir 上传文件保存目录。
	UploadDir string `json:"upload-dir" mapstructure:"upload-dir" validate:"required"`

	// KnowledgeDir 知识库文本目录。
	KnowledgeDir string `json:"knowledge-dir" mapstructure:"knowledge-dir" validate:"required"`

	// EncryptedPrefix 加密副本文件名前缀。
	EncryptedPrefix string `json:"encrypted-prefix" mapstructure:"encrypted-prefix" validate:"required,excludesall=/\\"`

	// MaxUploadSize 上传大小上限（字节）。
	MaxUploadSize int64 `json:"max-upload-size" mapstructure:"max-upload-size" validate:"gt=0"`
}

// NewOptions 创建默认配置。
func NewOptions() *Options {
	return &Options{
		UploadDir:       "uploads",
		KnowledgeDir:    "knowledge_base",
		EncryptedPrefix: "enc_",
		MaxUploadSize:   32 << 20,
	}
}

// AddFlags adds flags for intake options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "intake."
	fs.StringVar(&o.UploadDir, p+"upload-dir", o.UploadDir, "Directory uploaded files are written to.")
	fs.StringVar(&o.KnowledgeDir, p+"knowledge-dir", o.KnowledgeDir, "Directory holding tagged knowledge entries.")
	fs.StringVar(&o.EncryptedPrefix, p+"encrypted-prefix", o.EncryptedPrefix, "File name prefix of the encrypted copy.")
	fs.Int64Var(&o.MaxUploadSize, p+"max-upload-size", o.MaxUploadSize, "Maximum accepted upload size in bytes.")
}

// Validate validates the intake options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	if err := validate.Struct(o); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			errs := make([]error, 0, len(verrs))
			for _, fe := range verrs {
				errs = append(errs, fe)
			}
			return errs
		}
		return []error{err}
	}
	return nil
}

// Complete 规范化路径并创建目录。
func (o *Options) Complete() error {
	o.UploadDir = filepath.Clean(o.UploadDir)
	o.KnowledgeDir = filepath.Clean(o.KnowledgeDir)
	if err := os.MkdirAll(o.UploadDir, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(o.KnowledgeDir, 0o755)
}
