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
	"context"
	"log/slog"
	"sync"

	applog "pagebuilder/internal/log"
)

// WriteQueue runs write operations one at a time in the order they were enqueued.
// An operation starts only after the previous one has settled, whatever its outcome.
type WriteQueue struct {
	mu   sync.Mutex
	tail chan struct{}
	log  *slog.Logger
}

func NewWriteQueue() *WriteQueue {
	done := make(chan struct{})
	close(done)
	return &WriteQueue{tail: done, log: applog.WithOperation(applog.WithComponent("storage"), "write_queue")}
}

// Enqueue appends op to the chain and blocks until it has run.
// A failed op is retried once before its error is returned to the caller.
// If ctx ends while waiting for the turn, op is not run and ctx.Err() is returned;
// ordering of later operations is unaffected.
func (q *WriteQueue) Enqueue(ctx context.Context, op func(context.Context) error) error {
	done := make(chan struct{})
	q.mu.Lock()
	prev := q.tail
	q.tail = done
	q.mu.Unlock()

	select {
	case <-prev:
	case <-ctx.Done():
		go func() {
			<-prev
			close(done)
		}()
		return ctx.Err()
	}
	defer close(done)

	err := op(ctx)
	if err == nil {
		return nil
	}
	q.log.Warn("write failed, retrying once", slog.Any("err", err))
	if err = op(ctx); err != nil {
		q.log.Error("write retry failed", slog.Any("err", err))
	}
	return err
}
