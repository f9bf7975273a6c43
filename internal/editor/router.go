/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"strings"

	"pagebuilder/internal/domain"
)

// Router is the navigation collaborator. The host tells the session about page
// changes through Session.ChangePage; the session calls back here when a link is activated.
type Router interface {
	Navigate(page domain.PageID)
	OpenExternal(url string)
}

// LinkTarget classifies a link value. External links start with the http prefix;
// anything else must name a known page.
func LinkTarget(link string) (page domain.PageID, external bool, ok bool) {
	link = strings.TrimSpace(link)
	switch {
	case link == "":
		return "", false, false
	case strings.HasPrefix(link, domain.ExternalLinkPrefix):
		return "", true, true
	case domain.PageID(link).Valid():
		return domain.PageID(link), false, true
	default:
		return "", false, false
	}
}

// NopRouter ignores every navigation request.
type NopRouter struct{}

func (NopRouter) Navigate(domain.PageID) {}
func (NopRouter) OpenExternal(string)    {}
