// Package openapi APIのOpenAPI仕様を埋め込みで配信するためのパッケージ
package openapi

import _ "embed"

// Spec OpenAPI仕様（YAML）
//
//go:embed openapi.yaml
var Spec []byte
