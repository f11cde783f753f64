//go:build tools
// +build tools

// Package tools pins mockgen so that go generate resolves the same version on
// every checkout.
package chat_signal

import (
	_ "go.uber.org/mock/mockgen"
)
