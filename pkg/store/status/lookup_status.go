/*
 * Copyright 2018 The Trickster Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
// Package status governs the possible outcomes of a store operation
package status

import "strconv"

// LookupStatus defines the possible outcome of a keyed store operation
type LookupStatus int

const (
	// LookupStatusOK indicates a write that was applied
	LookupStatusOK = LookupStatus(iota)
	// LookupStatusHit indicates the key was present and live
	LookupStatusHit
	// LookupStatusKeyMiss indicates the key does not exist
	LookupStatusKeyMiss
	// LookupStatusExpired indicates the key existed but its idle time reached the TTL;
	// the entry was purged as part of the lookup
	LookupStatusExpired
	// LookupStatusConflict indicates a conditional update whose precondition did not hold
	LookupStatusConflict
)

var lookupStatusNames = map[string]LookupStatus{
	"ok":       LookupStatusOK,
	"hit":      LookupStatusHit,
	"kmiss":    LookupStatusKeyMiss,
	"expired":  LookupStatusExpired,
	"conflict": LookupStatusConflict,
}

var lookupStatusValues = map[LookupStatus]string{
	LookupStatusOK:       "ok",
	LookupStatusHit:      "hit",
	LookupStatusKeyMiss:  "kmiss",
	LookupStatusExpired:  "expired",
	LookupStatusConflict: "conflict",
}

func (s LookupStatus) String() string {
	if v, ok := lookupStatusValues[s]; ok {
		return v
	}
	return strconv.Itoa(int(s))
}

// Found reports whether the status represents a live entry
func (s LookupStatus) Found() bool {
	return s == LookupStatusHit || s == LookupStatusOK || s == LookupStatusConflict
}

// Parse returns the LookupStatus for the provided name
func Parse(name string) (LookupStatus, bool) {
	s, ok := lookupStatusNames[name]
	return s, ok
}
