/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package idgen generates element identifiers.
// The strategy is a startup-time decision (config editor.id_strategy) so the
// editor session only ever sees a Generator.
package idgen

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NanoID returns a Generator of base-36 ids of the given length.
func NanoID(length int) Generator {
	if length <= 0 {
		length = 9
	}
	return func() string {
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		for i := range buf {
			buf[i] = alphabet[int(buf[i])%len(alphabet)]
		}
		return string(buf)
	}
}

// UUIDv7 returns a Generator of RFC 9562 v7 UUID strings.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Default matches the short ids stored by earlier exports.
var Default = NanoID(9)

// FromName resolves a strategy name ("nanoid", "uuid").
func FromName(name string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "nanoid":
		return Default, nil
	case "uuid", "uuidv7":
		return UUIDv7(), nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", name)
	}
}
