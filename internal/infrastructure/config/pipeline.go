package config

// PipelineConfig lists the finishing stages in order. The first entry is the
// cutting stage; the last is the terminal stage that feeds finished stock.
type PipelineConfig struct {
	Stages []string `mapstructure:"stages" validate:"required,min=1,unique,dive,required"`
}
