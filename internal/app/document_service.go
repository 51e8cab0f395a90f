package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"gopherai-docqa/internal/apperror"
	"gopherai-docqa/internal/model"
	"gopherai-docqa/internal/repository"
	"gopherai-docqa/internal/storage"
)

const summaryUnavailable = "Summary not available"

type Extractor interface {
	Extract(path string, fileType model.FileType) (string, error)
	Render(path string, fileType model.FileType) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type Answerer interface {
	Answer(ctx context.Context, question, docText string) (string, error)
}

type VectorIndex interface {
	Upsert(ctx context.Context, documentID uint, vector []float32) error
	Delete(ctx context.Context, documentID uint) error
}

type FileStore interface {
	Save(r io.Reader, ext string) (string, error)
	Path(name string) string
	Exists(name string) bool
	Remove(name string) error
}

type TextCache interface {
	GetText(ctx context.Context, documentID uint) (string, bool, error)
	SetText(ctx context.Context, documentID uint, text string) error
	DeleteText(ctx context.Context, documentID uint) error
}

type ChatLogPublisher interface {
	Publish(ctx context.Context, entry model.ChatLog) error
}

// Actor is the authenticated caller of a document operation.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

type DocumentService struct {
	docRepo   *repository.DocumentRepository
	chatRepo  *repository.ChatLogRepository
	files     FileStore
	extractor Extractor
	embedder  Embedder
	summarize Summarizer
	answerer  Answerer
	index     VectorIndex

	// optional
	textCache TextCache
	publisher ChatLogPublisher
}

type DocumentServiceDeps struct {
	Documents  *repository.DocumentRepository
	ChatLogs   *repository.ChatLogRepository
	Files      FileStore
	Extractor  Extractor
	Embedder   Embedder
	Summarizer Summarizer
	Answerer   Answerer
	Index      VectorIndex
	TextCache  TextCache
	Publisher  ChatLogPublisher
}

func NewDocumentService(deps DocumentServiceDeps) *DocumentService {
	return &DocumentService{
		docRepo:   deps.Documents,
		chatRepo:  deps.ChatLogs,
		files:     deps.Files,
		extractor: deps.Extractor,
		embedder:  deps.Embedder,
		summarize: deps.Summarizer,
		answerer:  deps.Answerer,
		index:     deps.Index,
		textCache: deps.TextCache,
		publisher: deps.Publisher,
	}
}

type UploadInput struct {
	Actor    Actor
	Filename string
	Content  io.Reader
}

// Upload stores, extracts, embeds, summarizes, records and indexes one file.
// On any failure nothing of the upload is left behind.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*model.Document, error) {
	if !input.Actor.IsAdmin() {
		return nil, apperror.New(apperror.Authorization, "")
	}
	name := strings.TrimSpace(input.Filename)
	if name == "" || input.Content == nil {
		return nil, apperror.New(apperror.Validation, "No file provided")
	}
	fileType, err := model.FileTypeFromName(name)
	if err != nil {
		return nil, apperror.Wrapf(apperror.Validation, err, "File type not allowed")
	}
	originalName := storage.SecureFilename(name)
	if originalName == "" {
		originalName = "document." + fileType.String()
	}

	stored, err := s.files.Save(input.Content, fileType.String())
	if err != nil {
		return nil, fmt.Errorf("save upload failed: %w", err)
	}
	log := logrus.WithFields(logrus.Fields{
		"stored_filename": stored,
		"file_type":       fileType,
		"user_id":         input.Actor.UserID,
	})

	text, err := s.extractor.Extract(s.files.Path(stored), fileType)
	if err != nil {
		s.discardFile(log, stored)
		return nil, err
	}

	vector, summary, err := s.derive(ctx, text)
	if err != nil {
		s.discardFile(log, stored)
		return nil, err
	}

	doc := &model.Document{
		Filename:         stored,
		OriginalFilename: originalName,
		FileType:         fileType,
		UserID:           input.Actor.UserID,
		Summary:          &summary,
	}
	if err := s.docRepo.Create(doc); err != nil {
		s.discardFile(log, stored)
		return nil, err
	}
	log = log.WithField("document_id", doc.ID)

	if err := s.index.Upsert(ctx, doc.ID, vector); err != nil {
		if delErr := s.docRepo.Delete(doc.ID); delErr != nil {
			log.WithError(delErr).Error("rollback document row failed")
		}
		s.discardFile(log, stored)
		return nil, err
	}

	s.cacheText(ctx, doc.ID, text)
	log.Info("document ingested")
	return doc, nil
}

// derive runs embedding and summarization concurrently; both must succeed.
func (s *DocumentService) derive(ctx context.Context, text string) ([]float32, string, error) {
	var (
		vector  []float32
		summary string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.embedder.Embed(gctx, text)
		vector = v
		return err
	})
	g.Go(func() error {
		out, err := s.summarize.Summarize(gctx, text)
		summary = out
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, "", err
	}
	return vector, summary, nil
}

// Delete removes the file, the row, the cached text and the vector entry.
// Vector removal is best effort: a failure is logged, not returned.
func (s *DocumentService) Delete(ctx context.Context, actor Actor, id uint) error {
	if !actor.IsAdmin() {
		return apperror.New(apperror.Authorization, "")
	}
	doc, err := s.getDocument(id)
	if err != nil {
		return err
	}
	log := logrus.WithField("document_id", doc.ID)

	if s.files.Exists(doc.Filename) {
		if err := s.files.Remove(doc.Filename); err != nil {
			return err
		}
	}
	if err := s.docRepo.Delete(doc.ID); err != nil {
		return err
	}
	if s.textCache != nil {
		if err := s.textCache.DeleteText(ctx, doc.ID); err != nil {
			log.WithError(err).Warn("drop cached text failed")
		}
	}
	if err := s.index.Delete(ctx, doc.ID); err != nil {
		log.WithError(err).WithField("vector_id", doc.VectorID()).Warn("vector entry left behind")
	}
	log.Info("document deleted")
	return nil
}

// Rename changes only the display name. The stored file is untouched.
func (s *DocumentService) Rename(_ context.Context, actor Actor, id uint, newName string) error {
	if !actor.IsAdmin() {
		return apperror.New(apperror.Authorization, "")
	}
	if strings.TrimSpace(newName) == "" {
		return apperror.New(apperror.Validation, "New name not provided")
	}
	doc, err := s.getDocument(id)
	if err != nil {
		return err
	}
	clean := storage.SecureFilename(newName)
	if clean == "" {
		return apperror.New(apperror.Validation, "New name has no usable characters")
	}
	if err := s.docRepo.UpdateOriginalFilename(doc.ID, clean); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(apperror.NotFound, "Document not found")
		}
		return err
	}
	return nil
}

type DocumentView struct {
	Content  string         `json:"content"`
	Summary  string         `json:"summary"`
	FileType model.FileType `json:"file_type"`
}

func (s *DocumentService) View(_ context.Context, id uint) (*DocumentView, error) {
	doc, err := s.getDocument(id)
	if err != nil {
		return nil, err
	}
	if !s.files.Exists(doc.Filename) {
		return nil, apperror.New(apperror.NotFound, "File not found")
	}
	content, err := s.extractor.Render(s.files.Path(doc.Filename), doc.FileType)
	if err != nil {
		return nil, err
	}
	summary := summaryUnavailable
	if doc.Summary != nil && *doc.Summary != "" {
		summary = *doc.Summary
	}
	return &DocumentView{Content: content, Summary: summary, FileType: doc.FileType}, nil
}

func (s *DocumentService) List(_ context.Context) ([]model.Document, error) {
	return s.docRepo.List()
}

// Reprocess re-extracts a stored document and refreshes its summary and vector.
func (s *DocumentService) Reprocess(ctx context.Context, actor Actor, id uint) (*model.Document, error) {
	if !actor.IsAdmin() {
		return nil, apperror.New(apperror.Authorization, "")
	}
	doc, err := s.getDocument(id)
	if err != nil {
		return nil, err
	}
	if !s.files.Exists(doc.Filename) {
		return nil, apperror.New(apperror.NotFound, "Document file not found")
	}

	text, err := s.extractor.Extract(s.files.Path(doc.Filename), doc.FileType)
	if err != nil {
		return nil, err
	}
	vector, summary, err := s.derive(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := s.index.Upsert(ctx, doc.ID, vector); err != nil {
		return nil, err
	}
	if err := s.docRepo.UpdateSummary(doc.ID, summary); err != nil {
		return nil, err
	}
	doc.Summary = &summary
	s.cacheText(ctx, doc.ID, text)

	logrus.WithField("document_id", doc.ID).Info("document reprocessed")
	return doc, nil
}

type AskInput struct {
	UserID     uint
	DocumentID uint
	Question   string
}

type AskResult struct {
	Answer string `json:"answer"`
}

// Ask answers a question about one document and records the exchange.
func (s *DocumentService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" || input.DocumentID == 0 {
		return nil, apperror.New(apperror.Validation, "Missing question or document ID")
	}
	doc, err := s.getDocument(input.DocumentID)
	if err != nil {
		return nil, err
	}
	if !s.files.Exists(doc.Filename) {
		return nil, apperror.New(apperror.NotFound, "Document file not found")
	}

	text, err := s.documentText(ctx, doc)
	if err != nil {
		return nil, err
	}
	answer, err := s.answerer.Answer(ctx, question, text)
	if err != nil {
		return nil, err
	}

	s.recordChat(ctx, model.ChatLog{
		UserID:     input.UserID,
		DocumentID: doc.ID,
		Question:   question,
		Answer:     answer,
		CreatedAt:  time.Now(),
	})
	return &AskResult{Answer: answer}, nil
}

func (s *DocumentService) ChatHistory(_ context.Context, userID, documentID uint, limit int) ([]model.ChatLog, error) {
	if userID == 0 || documentID == 0 {
		return nil, apperror.New(apperror.Validation, "Missing user or document ID")
	}
	if _, err := s.getDocument(documentID); err != nil {
		return nil, err
	}
	return s.chatRepo.ListByUserAndDocument(userID, documentID, limit)
}

func (s *DocumentService) getDocument(id uint) (*model.Document, error) {
	if id == 0 {
		return nil, apperror.New(apperror.Validation, "Missing document ID")
	}
	doc, err := s.docRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperror.New(apperror.NotFound, "Document not found")
	}
	return doc, nil
}

func (s *DocumentService) documentText(ctx context.Context, doc *model.Document) (string, error) {
	if s.textCache != nil {
		text, ok, err := s.textCache.GetText(ctx, doc.ID)
		if err != nil {
			logrus.WithError(err).WithField("document_id", doc.ID).Warn("text cache read failed")
		} else if ok {
			return text, nil
		}
	}
	text, err := s.extractor.Extract(s.files.Path(doc.Filename), doc.FileType)
	if err != nil {
		return "", err
	}
	s.cacheText(ctx, doc.ID, text)
	return text, nil
}

func (s *DocumentService) cacheText(ctx context.Context, id uint, text string) {
	if s.textCache == nil {
		return
	}
	if err := s.textCache.SetText(ctx, id, text); err != nil {
		logrus.WithError(err).WithField("document_id", id).Warn("text cache write failed")
	}
}

// recordChat prefers the queue and falls back to a direct insert.
// The answer has already been produced, so failures are only logged.
func (s *DocumentService) recordChat(ctx context.Context, entry model.ChatLog) {
	log := logrus.WithFields(logrus.Fields{"user_id": entry.UserID, "document_id": entry.DocumentID})
	if s.publisher != nil {
		err := s.publisher.Publish(ctx, entry)
		if err == nil {
			return
		}
		log.WithError(err).Warn("chat log enqueue failed, writing directly")
	}
	if err := s.chatRepo.Create(&entry); err != nil {
		log.WithError(err).Error("chat log write failed")
	}
}

func (s *DocumentService) discardFile(log *logrus.Entry, stored string) {
	if err := s.files.Remove(stored); err != nil {
		log.WithError(err).Error("remove upload failed")
	}
}
