// Copyright 2026 Repobrowse Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import "strings"

// RootPath is the display path of the tree root. Folder paths always start
// and end with a single slash; leaf paths start with a slash and carry none
// at the end.
const RootPath = "/"

// JoinFolderPath joins segments into a folder path, e.g. ["a","b"] -> "/a/b/".
// No segments yields the root path.
func JoinFolderPath(segments []string) string {
	var buf strings.Builder
	buf.WriteByte('/')
	for _, s := range segments {
		buf.WriteString(s)
		buf.WriteByte('/')
	}
	return buf.String()
}

// JoinLeafPath joins segments into a leaf path, e.g. ["a","b"] -> "/a/b".
func JoinLeafPath(segments []string) string {
	return "/" + strings.Join(segments, "/")
}

// ParentFolderPath returns the folder path one level up,
// e.g. "/foo/bar/com/" -> "/foo/bar/".
func ParentFolderPath(folderPath string) string {
	withoutSlash := strings.TrimSuffix(folderPath, "/")
	return withoutSlash[:strings.LastIndexByte(withoutSlash, '/')+1]
}

// LastFolderName returns the final segment of a folder path,
// e.g. "/foo/bar/com/" -> "com".
func LastFolderName(folderPath string) string {
	withoutSlash := strings.TrimSuffix(folderPath, "/")
	return withoutSlash[strings.LastIndexByte(withoutSlash, '/')+1:]
}

// SplitSegments splits a display path into its segments, dropping empty
// parts, e.g. "/a/b/" -> ["a","b"].
func SplitSegments(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// ValidSegments reports whether every segment is non-empty and free of
// slashes and dot traversal.
func ValidSegments(segments []string) bool {
	if len(segments) == 0 {
		return false
	}
	for _, s := range segments {
		if s == "" || s == "." || s == ".." || strings.ContainsRune(s, '/') {
			return false
		}
	}
	return true
}
