package config

// Version is the build version, overridable at link time:
//
//	go build -ldflags "-X devforge/internal/infra/config.Version=v0.3.1"
var Version = "0.1.0"
