// Package analyzer provides analysis sidecar options.
package analyzer

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/naughty-assistant/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options 分析服务配置。视觉与音频分析由 HTTP sidecar 提供。
type Options struct {
	// VisionURL OCR 与图像分类服务地址。
	VisionURL string `json:"vision-url" mapstructure:"vision-url"`

	// AudioURL 音频特征提取服务地址。
	AudioURL string `json:"audio-url" mapstructure:"audio-url"`

	// Timeout 单次分析请求超时。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// Clusters 表格数据聚类数量。
	Clusters int `json:"clusters" mapstructure:"clusters"`
}

// NewOptions 创建默认配置。
func NewOptions() *Options {
	return &Options{
		VisionURL: "http://localhost:8501",
		AudioURL:  "http://localhost:8502",
		Timeout:   60 * time.Second,
		Clusters:  3,
	}
}

// AddFlags adds flags for analyzer options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "analyzer."
	fs.StringVar(&o.VisionURL, p+"vision-url", o.VisionURL, "Base URL of the OCR/classification sidecar.")
	fs.StringVar(&o.AudioURL, p+"audio-url", o.AudioURL, "Base URL of the audio feature sidecar.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Timeout of one sidecar request.")
	fs.IntVar(&o.Clusters, p+"clusters", o.Clusters, "Number of clusters for tabular data.")
}

// Validate validates the analyzer options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("analyzer.timeout must be positive"))
	}
	if o.Clusters <= 0 {
		errs = append(errs, fmt.Errorf("analyzer.clusters must be positive"))
	}
	return errs
}

// Complete completes the analyzer options.
func (o *Options) Complete() error {
	return nil
}
