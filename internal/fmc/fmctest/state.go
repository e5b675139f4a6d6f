// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package fmctest

import (
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// State represents a JSON document that can be manipulated using [sjson]
// syntax. Collections are stored as arrays of objects carrying an "id".
type State struct {
	sync.RWMutex

	Buf []byte
}

// Get returns the value at path.
func (s *State) Get(path string) gjson.Result {
	s.RLock()
	defer s.RUnlock()
	return gjson.GetBytes(s.Buf, path)
}

// Items returns the elements of the array at path.
func (s *State) Items(path string) []gjson.Result {
	return s.Get(path).Array()
}

// Set replaces the value at path.
func (s *State) Set(path string, raw []byte) {
	s.Lock()
	defer s.Unlock()
	s.Buf, _ = sjson.SetRawBytes(s.Buf, path, raw)
}

// Append adds raw to the end of the array at path, creating it if needed.
func (s *State) Append(path string, raw []byte) {
	s.Set(path+".-1", raw)
}

// Index returns the position of the element with the given id in the
// array at path, or -1.
func (s *State) Index(path, id string) int {
	idx := -1
	for i, r := range s.Items(path) {
		if r.Get("id").String() == id {
			idx = i
			break
		}
	}
	return idx
}

// Lookup returns the element with the given id in the array at path.
func (s *State) Lookup(path, id string) (gjson.Result, bool) {
	i := s.Index(path, id)
	if i < 0 {
		return gjson.Result{}, false
	}
	return s.Get(path + "." + strconv.Itoa(i)), true
}

// Replace overwrites the element with the given id in the array at path.
// It reports whether the element existed.
func (s *State) Replace(path, id string, raw []byte) bool {
	i := s.Index(path, id)
	if i < 0 {
		return false
	}
	s.Set(path+"."+strconv.Itoa(i), raw)
	return true
}

// Remove deletes the element with the given id from the array at path.
// It reports whether the element existed.
func (s *State) Remove(path, id string) bool {
	i := s.Index(path, id)
	if i < 0 {
		return false
	}
	s.Del(path + "." + strconv.Itoa(i))
	return true
}

// Del deletes the value at path.
func (s *State) Del(path string) {
	s.Lock()
	defer s.Unlock()
	s.Buf, _ = sjson.DeleteBytes(s.Buf, path)
}

// Reset drops the whole document.
func (s *State) Reset() {
	s.Lock()
	defer s.Unlock()
	s.Buf = nil
}

var keyEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
)

// key escapes a single path component.
func key(s string) string {
	return keyEscaper.Replace(s)
}
