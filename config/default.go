package config

import _ "embed"

// DefaultConfigYAML 嵌入的默认配置，保证零配置可启动
//
//go:embed default.yaml
var DefaultConfigYAML []byte
