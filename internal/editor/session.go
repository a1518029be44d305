// Package editor implements the post editing session behind the dashboard
// modal: an ordered product collection, a media set with staged uploads
// and staged deletions, and the save flow that commits both to the
// lookbook backend.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"lookbook-service/internal/clients"
	"lookbook-service/internal/models"
	"lookbook-service/internal/staging"
)

// Mode distinguishes a session creating a new post from one editing an
// existing post. In update mode product operations sync to the backend
// immediately; in create mode they stay local until Save.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

// Status is the session's lifecycle state. Mutations are only accepted
// while idle.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusUploading  Status = "uploading"
)

// Direction moves a product one step in the display order
type Direction int

const (
	MoveUp   Direction = -1
	MoveDown Direction = 1
)

var (
	ErrBusy             = errors.New("another operation is in progress")
	ErrTitleRequired    = errors.New("title is required")
	ErrNoMedia          = errors.New("a post needs at least one media file")
	ErrDuplicateProduct = errors.New("product is already attached")
	ErrProductNotFound  = errors.New("product is not attached")
	ErrMediaNotFound    = errors.New("media not found")
	ErrBadMediaType     = errors.New("media type must be image or video")
)

// localMediaPrefix marks media appended by URL that the backend has not
// persisted yet. Local entries carry no backend row, so a deletion drops
// them outright instead of staging.
const localMediaPrefix = "local-"

func isLocalMedia(id string) bool {
	return strings.HasPrefix(id, localMediaPrefix)
}

// PostStore is the slice of the posts client the editor needs
type PostStore interface {
	GetByID(ctx context.Context, id string) (*models.Ootd, error)
	Create(ctx context.Context, req models.CreateOotdRequest) (*models.Ootd, error)
	Update(ctx context.Context, id string, req models.UpdateOotdRequest) (*models.Ootd, error)
	AttachProduct(ctx context.Context, ootdID string, req models.AttachProductRequest) (*models.OotdProduct, error)
	UpdateProduct(ctx context.Context, ootdID, productID, note string) (*models.OotdProduct, error)
	DetachProduct(ctx context.Context, ootdID, productID string) error
	ReorderProducts(ctx context.Context, ootdID string, req models.ReorderProductsRequest) error
}

// MediaStore is the slice of the media client the editor needs
type MediaStore interface {
	BulkUpload(ctx context.Context, ootdID string, files []clients.UploadFile) (*models.MediaUploadResult, error)
	Delete(ctx context.Context, mediaID string) error
	SetPrimary(ctx context.Context, mediaID string) error
}

// Draft carries the editable post fields
type Draft struct {
	Title            string
	Description      string
	URLPostInstagram string
	Mood             []string
	IsPublic         bool
}

// MediaItem is one remote media attachment tracked by the session.
// MarkedDeleted stages a deletion that Save commits.
type MediaItem struct {
	models.OotdMedia
	MarkedDeleted bool
}

// Session is one open editor. All methods are safe for concurrent use;
// a single mutex serializes operations so remote syncs never interleave.
type Session struct {
	ID     string
	UserID string
	Mode   Mode

	posts  PostStore
	media  MediaStore
	stager *staging.Stager

	mu       sync.Mutex
	status   Status
	postID   string
	draft    Draft
	products []models.OotdProduct
	items    []MediaItem
	staged   []*staging.File
	lastUsed time.Time
}

// NewCreateSession opens an editor for a new post
func NewCreateSession(userID string, posts PostStore, media MediaStore, stager *staging.Stager) *Session {
	return &Session{
		ID:       uuid.New().String(),
		UserID:   userID,
		Mode:     ModeCreate,
		posts:    posts,
		media:    media,
		stager:   stager,
		status:   StatusIdle,
		draft:    Draft{IsPublic: true},
		lastUsed: time.Now(),
	}
}

// NewUpdateSession opens an editor over an existing post, loading its
// current state from the backend.
func NewUpdateSession(ctx context.Context, userID, postID string, posts PostStore, media MediaStore, stager *staging.Stager) (*Session, error) {
	post, err := posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("post %s not found", postID)
	}

	s := &Session{
		ID:       uuid.New().String(),
		UserID:   userID,
		Mode:     ModeUpdate,
		posts:    posts,
		media:    media,
		stager:   stager,
		status:   StatusIdle,
		postID:   post.ID,
		lastUsed: time.Now(),
	}
	s.loadPost(post)
	return s, nil
}

func (s *Session) loadPost(post *models.Ootd) {
	s.draft = Draft{
		Title:            post.Title,
		Description:      post.Description,
		URLPostInstagram: post.URLPostInstagram,
		Mood:             append([]string(nil), post.Mood...),
		IsPublic:         post.IsPublic,
	}
	s.products = append([]models.OotdProduct(nil), post.OotdProducts...)
	sortByPosition(s.products)
	renumber(s.products)

	s.items = s.items[:0]
	for _, m := range post.Media {
		s.items = append(s.items, MediaItem{OotdMedia: m})
	}
}

// begin moves the session out of idle; every mutation goes through it
func (s *Session) begin(next Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusIdle {
		return ErrBusy
	}
	s.status = next
	s.lastUsed = time.Now()
	return nil
}

func (s *Session) finish() {
	s.mu.Lock()
	s.status = StatusIdle
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

// SetDraft replaces the editable post fields
func (s *Session) SetDraft(d Draft) error {
	if err := s.begin(StatusSubmitting); err != nil {
		return err
	}
	defer s.finish()

	d.Mood = append([]string(nil), d.Mood...)
	s.mu.Lock()
	s.draft = d
	s.mu.Unlock()
	return nil
}

// AddProduct attaches a product at the end of the display order. In
// update mode the attachment is persisted before the local state changes.
func (s *Session) AddProduct(ctx context.Context, product models.Product, note string) error {
	if err := s.begin(StatusSubmitting); err != nil {
		return err
	}
	defer s.finish()

	if s.indexOfProduct(product.ID) >= 0 {
		return ErrDuplicateProduct
	}

	position := maxPosition(s.products) + 1
	entry := models.OotdProduct{
		ProductID: product.ID,
		Note:      note,
		Position:  position,
		Product:   &product,
	}

	if s.Mode == ModeUpdate {
		attached, err := s.posts.AttachProduct(ctx, s.postID, models.AttachProductRequest{
			ProductID: product.ID,
			Note:      note,
			Position:  position,
		})
		if err != nil {
			return err
		}
		if attached != nil {
			entry.ID = attached.ID
			entry.OotdID = attached.OotdID
		}
	}

	s.mu.Lock()
	s.products = append(s.products, entry)
	s.mu.Unlock()
	return nil
}

// RemoveProduct detaches a product and closes the position gap. The
// caller confirms the removal before invoking this.
func (s *Session) RemoveProduct(ctx context.Context, productID string) error {
	if err := s.begin(StatusSubmitting); err != nil {
		return err
	}
	defer s.finish()

	idx := s.indexOfProduct(productID)
	if idx < 0 {
		return ErrProductNotFound
	}

	if s.Mode == ModeUpdate {
		if err := s.posts.DetachProduct(ctx, s.postID, productID); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.products = append(s.products[:idx], s.products[idx+1:]...)
	renumber(s.products)
	s.mu.Unlock()
	return nil
}

// MoveProduct swaps a product with its neighbor. In update mode the full
// position assignment is persisted; a failed persist reverts the local
// order so the editor never shows an order the backend does not hold.
func (s *Session) MoveProduct(ctx context.Context, productID string, dir Direction) error {
	if err := s.begin(StatusSubmitting); err != nil {
		return err
	}
	defer s.finish()

	idx := s.indexOfProduct(productID)
	if idx < 0 {
		return ErrProductNotFound
	}
	target := idx + int(dir)
	if target < 0 || target >= len(s.products) {
		// already at the edge
		return nil
	}

	s.mu.Lock()
	s.products[idx], s.products[target] = s.products[target], s.products[idx]
	renumber(s.products)
	s.mu.Unlock()

	if s.Mode != ModeUpdate {
		return nil
	}

	req := models.ReorderProductsRequest{Positions: positionsOf(s.products)}
	if err := s.posts.ReorderProducts(ctx, s.postID, req); err != nil {
		s.mu.Lock()
		s.products[idx], s.products[target] = s.products[target], s.products[idx]
		renumber(s.products)
		s.mu.Unlock()
		return err
	}
	return nil
}

// EditNote rewrites the note on one product link. Saving an unchanged
// note is a no-op and never reaches the backend.
func (s *Session) EditNote(ctx context.Context, productID, note string) error {
	if err := s.begin(StatusSubmitting); err != nil {
		return err
	}
	defer s.finish()

	idx := s.indexOfProduct(productID)
	if idx < 0 {
		return ErrProductNotFound
	}
	if s.products[idx].Note == note {
		return nil
	}

	if s.Mode == ModeUpdate {
		if _, err := s.posts.UpdateProduct(ctx, s.postID, productID, note); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.products[idx].Note = note
	s.mu.Unlock()
	return nil
}

// StageMedia validates a selection and stages the accepted files. The
// count cap counts surviving remote media plus already staged files.
func (s *Session) StageMedia(incoming []staging.Incoming) ([]*staging.File, []models.MediaFileError, error) {
	if err := s.begin(StatusSubmitting); err != nil {
		return nil, nil, err
	}
	defer s.finish()

	staged, rejected, err := s.stager.Stage(s.activeMediaCount(), len(s.staged), incoming)
	if err != nil {
		return nil, rejected, err
	}

	s.mu.Lock()
	s.staged = append(s.staged, staged...)
	s.mu.Unlock()
	return staged, rejected, nil
}

// RemoveStaged drops a staged file and releases its preview handle
func (s *Session) RemoveStaged(stagedID string) error {
	if err := s.begin(StatusSubmitting); err != nil {
		return err
	}
	defer s.finish()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.staged {
		if f.ID == stagedID {
			f.Release()
			s.staged = append(s.staged[:i], s.staged[i+1:]...)
			return nil
		}
	}
	return ErrMediaNotFound
}

// AddMediaURL appends an already-hosted media file by URL. The entry
// becomes primary when it is the first active one; it is committed with
// the next Save.
func (s *Session) AddMediaURL(url string, mediaType models.MediaType) error {
	if err := s.begin(StatusSubmitting); err != nil {
		return err
	}
	defer s.finish()

	if url == "" {
		return ErrMediaNotFound
	}
	if mediaType != models.MediaTypeImage && mediaType != models.MediaTypeVideo {
		return ErrBadMediaType
	}

	max := s.stager.Limits().MaxPerPost
	if s.activeMediaCount()+len(s.staged)+1 > max {
		return &staging.LimitError{Max: max}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	first := s.activeMediaCount() == 0
	s.items = append(s.items, MediaItem{OotdMedia: models.OotdMedia{
		ID:        localMediaPrefix + uuid.New().String(),
		Type:      mediaType,
		URL:       url,
		IsPrimary: first,
	}})
	return nil
}

// SetPrimary marks one surviving attachment as the post's cover,
// clearing the flag everywhere else.
func (s *Session) SetPrimary(mediaID string) error {
	if err := s.begin(StatusSubmitting); err != nil {
		return err
	}
	defer s.finish()

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.items {
		if s.items[i].ID == mediaID && !s.items[i].MarkedDeleted {
			found = true
			break
		}
	}
	if !found {
		return ErrMediaNotFound
	}
	for i := range s.items {
		s.items[i].IsPrimary = s.items[i].ID == mediaID
	}
	return nil
}

// MarkDeleted stages a media deletion for the next Save. A deleted
// primary hands the flag to the first surviving attachment.
func (s *Session) MarkDeleted(mediaID string) error {
	if err := s.begin(StatusSubmitting); err != nil {
		return err
	}
	defer s.finish()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfMedia(mediaID)
	if idx < 0 {
		return ErrMediaNotFound
	}
	wasPrimary := s.items[idx].IsPrimary
	if isLocalMedia(mediaID) {
		// no backend row to stage a deletion for
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	} else {
		s.items[idx].MarkedDeleted = true
		s.items[idx].IsPrimary = false
	}
	if wasPrimary {
		s.promotePrimary()
	}
	return nil
}

// Restore cancels a staged deletion. The item does not regain primary.
func (s *Session) Restore(mediaID string) error {
	if err := s.begin(StatusSubmitting); err != nil {
		return err
	}
	defer s.finish()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfMedia(mediaID)
	if idx < 0 {
		return ErrMediaNotFound
	}
	s.items[idx].MarkedDeleted = false
	return nil
}

// DeletePermanent hard-deletes an attachment on the backend immediately,
// bypassing the staged-deletion flow. Deleting the primary promotes the
// first survivor and persists that promotion right away, since no save
// follows this path.
func (s *Session) DeletePermanent(ctx context.Context, mediaID string) error {
	if err := s.begin(StatusSubmitting); err != nil {
		return err
	}
	defer s.finish()

	idx := s.indexOfMedia(mediaID)
	if idx < 0 {
		return ErrMediaNotFound
	}

	if !isLocalMedia(mediaID) {
		if err := s.media.Delete(ctx, mediaID); err != nil {
			return err
		}
	}

	s.mu.Lock()
	wasPrimary := s.items[idx].IsPrimary
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	var promoted string
	if wasPrimary {
		s.promotePrimary()
		for _, item := range s.items {
			if item.IsPrimary {
				promoted = item.ID
				break
			}
		}
	}
	s.mu.Unlock()

	if promoted != "" && !isLocalMedia(promoted) {
		if err := s.media.SetPrimary(ctx, promoted); err != nil {
			log.WithError(err).WithField("media", promoted).Warn("failed to persist promoted primary")
		}
	}
	return nil
}

// SaveResult reports a completed save. Created is set when this save
// brought the post into existence. FileErrors lists staged files the
// backend rejected during upload; the save itself still succeeded.
type SaveResult struct {
	Post       *models.Ootd
	Created    bool
	FileErrors []models.MediaFileError
}

// Save commits the session. Create mode posts the draft with its product
// links inline, then uploads staged media to the new post. Update mode
// uploads staged media first, then persists the draft, the surviving
// media set and the staged deletions in one update.
func (s *Session) Save(ctx context.Context) (*SaveResult, error) {
	if err := s.begin(StatusSubmitting); err != nil {
		return nil, err
	}
	defer s.finish()

	if err := s.validateForSave(); err != nil {
		return nil, err
	}

	if s.Mode == ModeCreate {
		return s.saveCreate(ctx)
	}
	return s.saveUpdate(ctx)
}

func (s *Session) validateForSave() error {
	if s.draft.Title == "" {
		return ErrTitleRequired
	}
	if s.Mode == ModeUpdate && s.activeMediaCount()+len(s.staged) == 0 {
		return ErrNoMedia
	}
	return nil
}

func (s *Session) saveCreate(ctx context.Context) (*SaveResult, error) {
	s.mu.Lock()
	s.ensurePrimary()
	s.mu.Unlock()

	req := models.CreateOotdRequest{
		UserID:           s.UserID,
		Title:            s.draft.Title,
		Description:      s.draft.Description,
		URLPostInstagram: s.draft.URLPostInstagram,
		Mood:             s.draft.Mood,
		IsPublic:         s.draft.IsPublic,
		Products:         make([]models.OotdProductInput, 0, len(s.products)),
	}
	for _, p := range s.products {
		req.Products = append(req.Products, models.OotdProductInput{
			ID:       p.ProductID,
			Note:     p.Note,
			Position: p.Position,
		})
	}
	for _, item := range s.items {
		req.Media = append(req.Media, models.OotdMediaInput{
			Type:      item.Type,
			URL:       item.URL,
			IsPrimary: item.IsPrimary,
		})
	}

	post, err := s.posts.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("backend returned no post")
	}

	// the post exists now: flip to update mode before the upload so a
	// retry after an upload failure does not create a second post
	s.mu.Lock()
	s.postID = post.ID
	s.Mode = ModeUpdate
	s.mu.Unlock()

	fileErrors, err := s.uploadStaged(ctx)
	if err != nil {
		return nil, err
	}

	fresh, err := s.posts.GetByID(ctx, s.postID)
	if err != nil {
		log.WithError(err).WithField("post", s.postID).Warn("created post but could not re-fetch it")
		fresh = post
	}

	s.mu.Lock()
	s.loadPost(fresh)
	s.mu.Unlock()
	return &SaveResult{Post: fresh, Created: true, FileErrors: fileErrors}, nil
}

func (s *Session) saveUpdate(ctx context.Context) (*SaveResult, error) {
	fileErrors, err := s.uploadStaged(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.ensurePrimary()
	s.mu.Unlock()

	req := models.UpdateOotdRequest{
		Title:            s.draft.Title,
		Description:      s.draft.Description,
		URLPostInstagram: s.draft.URLPostInstagram,
		Mood:             s.draft.Mood,
		IsPublic:         s.draft.IsPublic,
	}
	for _, item := range s.items {
		if item.MarkedDeleted {
			if !isLocalMedia(item.ID) {
				req.DeleteMediaIDs = append(req.DeleteMediaIDs, item.ID)
			}
			continue
		}
		req.Media = append(req.Media, models.OotdMediaInput{
			Type:      item.Type,
			URL:       item.URL,
			IsPrimary: item.IsPrimary,
		})
	}

	post, err := s.posts.Update(ctx, s.postID, req)
	if err != nil {
		return nil, err
	}
	if post != nil {
		s.mu.Lock()
		s.loadPost(post)
		s.mu.Unlock()
	}
	return &SaveResult{Post: post, FileErrors: fileErrors}, nil
}

// uploadStaged pushes staged files to the backend. Successful uploads
// join the media set as non-primary attachments and their handles are
// released; rejected files are dropped and reported.
func (s *Session) uploadStaged(ctx context.Context) ([]models.MediaFileError, error) {
	s.mu.Lock()
	pending := append([]*staging.File(nil), s.staged...)
	s.mu.Unlock()
	if len(pending) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	s.status = StatusUploading
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.status = StatusSubmitting
		s.mu.Unlock()
	}()

	files := make([]clients.UploadFile, 0, len(pending))
	var readers []interface{ Close() error }
	for _, f := range pending {
		r, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("staged file %s unavailable: %w", f.Filename, err)
		}
		readers = append(readers, r)
		files = append(files, clients.UploadFile{
			Filename:    f.Filename,
			ContentType: f.ContentType,
			Reader:      r,
		})
	}
	result, err := s.media.BulkUpload(ctx, s.postID, files)
	for _, r := range readers {
		r.Close()
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	hasPrimary := false
	for _, item := range s.items {
		if item.IsPrimary && !item.MarkedDeleted {
			hasPrimary = true
			break
		}
	}
	for i, m := range result.Uploaded {
		if !hasPrimary && i == 0 {
			m.IsPrimary = true
			hasPrimary = true
		} else {
			m.IsPrimary = false
		}
		s.items = append(s.items, MediaItem{OotdMedia: m})
	}
	staging.ReleaseAll(s.staged)
	s.staged = s.staged[:0]
	s.mu.Unlock()

	return result.Errors, nil
}

// Teardown releases every staged file. The session must not be used
// afterwards.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	staging.ReleaseAll(s.staged)
	s.staged = s.staged[:0]
}

// Snapshot is a read-only view of the session for rendering
type Snapshot struct {
	ID       string               `json:"id"`
	Mode     Mode                 `json:"mode"`
	Status   Status               `json:"status"`
	PostID   string               `json:"postId,omitempty"`
	Draft    Draft                `json:"draft"`
	Products []models.OotdProduct `json:"products"`
	Media    []MediaItem          `json:"media"`
	Staged   []StagedInfo         `json:"staged"`
}

// StagedInfo describes one staged file without exposing its handle
type StagedInfo struct {
	ID          string           `json:"id"`
	Filename    string           `json:"filename"`
	ContentType string           `json:"contentType"`
	Type        models.MediaType `json:"type"`
	Size        int64            `json:"size"`
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:       s.ID,
		Mode:     s.Mode,
		Status:   s.status,
		PostID:   s.postID,
		Draft:    s.draft,
		Products: append([]models.OotdProduct(nil), s.products...),
		Media:    append([]MediaItem(nil), s.items...),
		Staged:   make([]StagedInfo, 0, len(s.staged)),
	}
	for _, f := range s.staged {
		snap.Staged = append(snap.Staged, StagedInfo{
			ID:          f.ID,
			Filename:    f.Filename,
			ContentType: f.ContentType,
			Type:        f.Type,
			Size:        f.Size,
		})
	}
	return snap
}

func (s *Session) indexOfProduct(productID string) int {
	for i, p := range s.products {
		if p.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Session) indexOfMedia(mediaID string) int {
	for i, m := range s.items {
		if m.ID == mediaID {
			return i
		}
	}
	return -1
}

func (s *Session) activeMediaCount() int {
	n := 0
	for _, m := range s.items {
		if !m.MarkedDeleted {
			n++
		}
	}
	return n
}

// promotePrimary hands the primary flag to the first surviving item
func (s *Session) promotePrimary() {
	for i := range s.items {
		if !s.items[i].MarkedDeleted {
			s.items[i].IsPrimary = true
			return
		}
	}
}

// ensurePrimary restores the one-primary invariant before a save commits
// the media set: a restored item does not regain the flag, so a
// mark-restore sequence can leave survivors with no primary at all.
func (s *Session) ensurePrimary() {
	for _, item := range s.items {
		if item.IsPrimary && !item.MarkedDeleted {
			return
		}
	}
	s.promotePrimary()
}

func sortByPosition(products []models.OotdProduct) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Position < products[j].Position
	})
}

func renumber(products []models.OotdProduct) {
	for i := range products {
		products[i].Position = i + 1
	}
}

func maxPosition(products []models.OotdProduct) int {
	max := 0
	for _, p := range products {
		if p.Position > max {
			max = p.Position
		}
	}
	return max
}

func positionsOf(products []models.OotdProduct) []models.ProductPosition {
	out := make([]models.ProductPosition, 0, len(products))
	for _, p := range products {
		out = append(out, models.ProductPosition{ProductID: p.ProductID, Position: p.Position})
	}
	return out
}
