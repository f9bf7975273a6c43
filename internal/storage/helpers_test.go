/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"fmt"

	"pagebuilder/internal/domain"
)

// docWith returns the initial document with n text elements on the home page.
func docWith(n int) domain.Document {
	contents := make([]string, n)
	for i := range contents {
		contents[i] = fmt.Sprintf("text %d", i)
	}
	i := 0
	return domain.AddElements(domain.InitialDocument(), domain.PageHome, domain.ElementText, contents, func() string {
		i++
		return fmt.Sprintf("el%d", i)
	})
}
