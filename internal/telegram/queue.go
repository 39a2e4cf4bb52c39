package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// chatQueue hands messages to handle in arrival order per chat. Different
// chats run concurrently; a chat has at most one worker, which exits once
// its backlog is empty.
type chatQueue struct {
	handle func(context.Context, *tgbotapi.Message)

	mu      sync.Mutex
	pending map[int64][]*tgbotapi.Message // key present while a worker runs
	wg      sync.WaitGroup
}

func newChatQueue(handle func(context.Context, *tgbotapi.Message)) *chatQueue {
	return &chatQueue{handle: handle, pending: make(map[int64][]*tgbotapi.Message)}
}

func (q *chatQueue) push(ctx context.Context, m *tgbotapi.Message) {
	id := m.Chat.ID
	q.mu.Lock()
	backlog, running := q.pending[id]
	q.pending[id] = append(backlog, m)
	q.mu.Unlock()

	if !running {
		q.wg.Add(1)
		go q.drain(ctx, id)
	}
}

func (q *chatQueue) drain(ctx context.Context, id int64) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		backlog := q.pending[id]
		if len(backlog) == 0 {
			delete(q.pending, id)
			q.mu.Unlock()
			return
		}
		m := backlog[0]
		backlog[0] = nil
		q.pending[id] = backlog[1:]
		q.mu.Unlock()

		q.handle(ctx, m)
	}
}

// wait blocks until every pushed message has been handled.
func (q *chatQueue) wait() {
	q.wg.Wait()
}
