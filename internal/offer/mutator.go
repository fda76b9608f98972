package offer

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/offerhub/offerhub/internal/apperr"
	"github.com/offerhub/offerhub/internal/auth"
	"github.com/offerhub/offerhub/internal/media"
)

var errInvalidPrice = apperr.Validation("price must be a non-negative number")

// Mutator publishes, edits and removes offers and their pictures.
type Mutator struct {
	repo    Repository
	images  media.Store
	folders media.Folders
	logger  *slog.Logger
	now     func() time.Time
}

// NewMutator builds a Mutator.
func NewMutator(repo Repository, images media.Store, folders media.Folders, logger *slog.Logger) *Mutator {
	return &Mutator{
		repo:    repo,
		images:  images,
		folders: folders,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Publish stores a new offer owned by owner, then uploads its picture and
// stores the picture reference. The two writes are not atomic: when the
// upload fails the offer stays without a picture.
func (m *Mutator) Publish(ctx context.Context, owner auth.Identity, in PublishInput) (Offer, error) {
	if !validPrice(in.Price) {
		return Offer{}, errInvalidPrice
	}

	now := m.now()
	o := Offer{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Details:     in.Details(),
		Owner:       Owner{ID: owner.ID, Account: owner.Account},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.repo.Create(ctx, o); err != nil {
		return Offer{}, apperr.Dependency("create offer", err)
	}

	if in.Image != nil {
		ref, err := m.images.Upload(ctx, *in.Image, m.folders.Offer(o.ID))
		if err != nil {
			m.logger.Warn("offer.image_upload_failed", slog.String("offer_id", o.ID), slog.Any("error", err))
			return Offer{}, apperr.Dependency("upload image", err)
		}
		o.Image = &ref
		if err := m.repo.Update(ctx, o, []Field{FieldImage}); err != nil {
			return Offer{}, apperr.Dependency("attach image", err)
		}
	}

	m.logger.Info("offer.published",
		slog.String("offer_id", o.ID),
		slog.String("owner_id", owner.ID),
		slog.Bool("image", o.Image != nil),
	)
	return o, nil
}

// Update applies a partial change to an existing offer. Ownership is not
// checked: any authenticated caller may edit any offer.
func (m *Mutator) Update(ctx context.Context, id string, caller auth.Identity, patch Patch) (Offer, error) {
	if patch.Price != nil && !validPrice(*patch.Price) {
		return Offer{}, errInvalidPrice
	}

	o, err := m.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Offer{}, errOfferNotFound
	}
	if err != nil {
		return Offer{}, apperr.Dependency("get offer", err)
	}

	changed := patch.Apply(&o)

	if patch.Image != nil {
		ref, err := m.images.Upload(ctx, *patch.Image, m.folders.Offer(o.ID))
		if err != nil {
			return Offer{}, apperr.Dependency("upload image", err)
		}
		o.Image = &ref
		changed = append(changed, FieldImage)
	}

	if len(changed) == 0 {
		return o, nil
	}

	o.UpdatedAt = m.now()
	if err := m.repo.Update(ctx, o, changed); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Offer{}, errOfferNotFound
		}
		return Offer{}, apperr.Dependency("update offer", err)
	}

	attrs := []any{slog.String("offer_id", o.ID), slog.Any("fields", changed)}
	if caller.ID != o.Owner.ID {
		m.logger.Info("offer.updated_by_non_owner", append(attrs, slog.String("caller_id", caller.ID))...)
	} else {
		m.logger.Info("offer.updated", attrs...)
	}
	return o, nil
}

// Delete removes an offer's pictures, then its folder, then the offer.
// An image-store failure aborts before the record is touched.
func (m *Mutator) Delete(ctx context.Context, id string) error {
	if _, err := m.repo.Get(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errOfferNotFound
		}
		return apperr.Dependency("get offer", err)
	}

	folder := m.folders.Offer(id)
	if err := m.images.DeleteByPrefix(ctx, folder); err != nil {
		return apperr.Dependency("delete images", err)
	}
	if err := m.images.DeleteFolder(ctx, folder); err != nil {
		return apperr.Dependency("delete image folder", err)
	}
	if err := m.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errOfferNotFound
		}
		return apperr.Dependency("delete offer", err)
	}

	m.logger.Info("offer.deleted", slog.String("offer_id", id))
	return nil
}

func validPrice(p float64) bool {
	return p >= 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
