// Copyright (C) 2026 The Ekam Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package rpc

import "strings"

// ParseBypassDirs splits the EKAM_REMAP_BYPASS_DIRS environment value
// (colon-separated absolute directories) into the form Remap expects,
// appending a trailing "/" to any entry missing one so prefix matching
// never treats "/foobar" as inside "/foo".
func ParseBypassDirs(env string) []string {
	if env == "" {
		return nil
	}
	parts := strings.Split(env, ":")
	dirs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if !strings.HasSuffix(p, "/") {
			p += "/"
		}
		dirs = append(dirs, p)
	}
	return dirs
}
