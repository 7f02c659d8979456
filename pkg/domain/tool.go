package domain

// ToolInfo describes a tool to the reasoning loop: a stable name and a
// one-line description used for tool selection. It carries no behavior.
type ToolInfo struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`
}
