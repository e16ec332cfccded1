package pipeline

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"OmicsExplore/pkg/survival"
)

//go:embed etc/config.yaml
var etcFS embed.FS

const defaultConfig = "etc/config.yaml"

// ClinicalColumns names the clinical table columns and literals.
type ClinicalColumns struct {
	Key            string `yaml:"key"`
	VitalStatus    string `yaml:"vital_status"`
	DaysToDeath    string `yaml:"days_to_death"`
	DaysToFollowUp string `yaml:"days_to_follow_up"`
	DeadValue      string `yaml:"dead_value"`
	MissingToken   string `yaml:"missing_token"`
}

// Config is one pipeline run.
type Config struct {
	ExpressionPath string          `yaml:"expression"`
	ClinicalPath   string          `yaml:"clinical"`
	OutputDir      string          `yaml:"outputdir"`
	SurvGene       string          `yaml:"survgene"`
	TopN           int             `yaml:"top_n"`
	Workbook       bool            `yaml:"workbook"`
	Webhook        string          `yaml:"webhook"`
	Clinical       ClinicalColumns `yaml:"clinical_columns"`
}

// DefaultConfig decodes the embedded configuration.
func DefaultConfig() (*Config, error) {
	var data, err = etcFS.ReadFile(defaultConfig)
	if err != nil {
		return nil, err
	}
	var cfg = &Config{}
	if err := cfg.decode(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("embedded %s: %w", defaultConfig, err)
	}
	return cfg, nil
}

// LoadConfig reads path over the embedded defaults. Keys absent from the file
// keep their default values; unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	var cfg, err = DefaultConfig()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := cfg.decode(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	var decoder = yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the settings a run cannot do without.
func (c *Config) Validate() error {
	var errs []error
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.SurvGene == "" {
		errs = append(errs, errors.New("survival gene is required"))
	}
	if c.ExpressionPath == "" {
		errs = append(errs, errors.New("expression matrix path is required"))
	}
	if c.ClinicalPath == "" {
		errs = append(errs, errors.New("clinical table path is required"))
	}
	if c.TopN <= 0 {
		errs = append(errs, fmt.Errorf("top_n must be positive, got %d", c.TopN))
	}
	return errors.Join(errs...)
}

// SurvivalOptions converts the clinical settings.
func (c *Config) SurvivalOptions() survival.Options {
	var opts = survival.DefaultOptions()
	setIf(&opts.VitalStatusColumn, c.Clinical.VitalStatus)
	setIf(&opts.DaysToDeathColumn, c.Clinical.DaysToDeath)
	setIf(&opts.DaysToFollowUpColumn, c.Clinical.DaysToFollowUp)
	setIf(&opts.DeadValue, c.Clinical.DeadValue)
	setIf(&opts.MissingToken, c.Clinical.MissingToken)
	return opts
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Path joins name onto the output directory.
func (c *Config) Path(name string) string {
	return filepath.Join(c.OutputDir, name)
}
