/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package storage implements local persistence of the site document.
// The primary channel is an embedded SQLite database holding one record under a fixed key.
// Writes go through a FIFO WriteQueue so they never interleave, and every accepted save also
// refreshes an emergency JSON copy in a separate directory that Load falls back to.
// A wipe guard refuses to replace a substantial persisted document with an empty one.
package storage
