/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	saved := []string{Version, GitCommit, GitTag, GitDirty}
	t.Cleanup(func() {
		Version, GitCommit, GitTag, GitDirty = saved[0], saved[1], saved[2], saved[3]
	})

	Version = "v1.2.3"
	if got := Get(); got != "v1.2.3" {
		t.Errorf("Get() = %q, want ldflags version", got)
	}

	Version = "dev"
	GitTag, GitCommit, GitDirty = "v1.0.0", "abcdef123456", "dirty"
	got := Get()
	// Test binaries may carry module version info, which wins.
	if strings.HasPrefix(got, "v1.0.0") && got != "v1.0.0-abcdef1-dirty" {
		t.Errorf("Get() = %q, want v1.0.0-abcdef1-dirty", got)
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, Name+"/") {
		t.Errorf("UserAgent() = %q, want %s/ prefix", ua, Name)
	}
}
