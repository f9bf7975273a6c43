/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"

	"pagebuilder/internal/app"
	"pagebuilder/internal/domain"
)

type notFoundError struct {
	page domain.PageID
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("element not found on %s: %s", e.page, e.id)
}

// requireElements fails on the first id that is not on page.
func requireElements(a *app.App, page domain.PageID, ids ...string) error {
	for _, id := range ids {
		if _, ok := a.Session().Element(page, id); !ok {
			return notFoundError{page: page, id: id}
		}
	}
	return nil
}
