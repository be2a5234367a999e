// 包 version：构建信息，通过 -ldflags "-X weather-app/internal/version.Commit=<sha>" 注入
package version

var Commit = "dev"
