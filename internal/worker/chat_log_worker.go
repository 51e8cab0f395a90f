package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"gopherai-docqa/internal/model"
)

type ChatLogStore interface {
	Create(entry *model.ChatLog) error
}

// ChatLogWorker drains the chat log queue into the database.
type ChatLogWorker struct {
	conn      *amqp.Connection
	store     ChatLogStore
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewChatLogWorker(conn *amqp.Connection, store ChatLogStore, queueName string) *ChatLogWorker {
	return &ChatLogWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
	}
}

func (w *ChatLogWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(d.Body); err != nil {
					logrus.WithError(err).WithField("queue", w.queueName).Warn("chat log dropped")
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *ChatLogWorker) handle(body []byte) error {
	var entry model.ChatLog
	if err := json.Unmarshal(body, &entry); err != nil {
		return fmt.Errorf("decode chat log failed: %w", err)
	}
	if entry.UserID == 0 || entry.DocumentID == 0 {
		return errors.New("chat log without user or document")
	}
	// The id is assigned by the database.
	entry.ID = 0
	return w.store.Create(&entry)
}

func (w *ChatLogWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
