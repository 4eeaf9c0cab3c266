//go:build !linux && !darwin

package lister

import "testing"

func specialFileCases(t *testing.T, dir string) []errorCase {
	return nil
}
