package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const profileColumns = `
	p.id, p.email, COALESCE(p.slug, ''), p.name, p.location, p.lat, p.lng,
	p.category, p.price, p.youtube_embed, p.role, p.user_type, p.details, p.images,
	p.active, p.email_verified, p.password_hash,
	COALESCE(p.verification_token, ''), COALESCE(p.reset_token_hash, ''), p.reset_expires,
	p.rating_stars, p.rating_count, p.created_at, p.updated_at`

// ProfileRow represents a profile row from the database
type ProfileRow struct {
	ID                string
	Email             string
	Slug              string
	Name              string
	Location          string
	Lat               *float64
	Lng               *float64
	Category          string
	Price             *float64
	YouTubeEmbed      string
	Role              string
	UserType          string
	Details           []byte
	Images            []byte
	Active            bool
	EmailVerified     bool
	PasswordHash      string
	VerificationToken string
	ResetTokenHash    string
	ResetExpires      *time.Time
	RatingStars       float64
	RatingCount       int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func scanProfile(row pgx.Row) (*models.Profile, []byte, error) {
	var r ProfileRow
	err := row.Scan(
		&r.ID, &r.Email, &r.Slug, &r.Name, &r.Location, &r.Lat, &r.Lng,
		&r.Category, &r.Price, &r.YouTubeEmbed, &r.Role, &r.UserType, &r.Details, &r.Images,
		&r.Active, &r.EmailVerified, &r.PasswordHash,
		&r.VerificationToken, &r.ResetTokenHash, &r.ResetExpires,
		&r.RatingStars, &r.RatingCount, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, nil, err
	}

	profile, err := rowToProfile(&r)
	if err != nil {
		return nil, nil, err
	}
	return profile, r.Images, nil
}

func rowToProfile(r *ProfileRow) (*models.Profile, error) {
	images, err := models.DecodeImages(r.Images)
	if err != nil {
		return nil, fmt.Errorf("profile %s has invalid images: %w", r.ID, err)
	}

	p := &models.Profile{
		ID:                r.ID,
		Email:             r.Email,
		Slug:              r.Slug,
		Name:              r.Name,
		Location:          r.Location,
		Lat:               r.Lat,
		Lng:               r.Lng,
		Category:          r.Category,
		Price:             r.Price,
		YouTubeEmbed:      r.YouTubeEmbed,
		Role:              models.Role(r.Role),
		UserType:          models.UserType(r.UserType),
		Images:            images,
		Active:            r.Active,
		EmailVerified:     r.EmailVerified,
		Rating:            models.Rating{Stars: r.RatingStars, Count: r.RatingCount},
		PasswordHash:      r.PasswordHash,
		VerificationToken: r.VerificationToken,
		ResetTokenHash:    r.ResetTokenHash,
		ResetExpires:      r.ResetExpires,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}

	if err := decodeDetails(p, r.Details); err != nil {
		return nil, fmt.Errorf("profile %s has invalid details: %w", r.ID, err)
	}
	return p, nil
}

// decodeDetails fills the details variant selected by the user type
func decodeDetails(p *models.Profile, raw []byte) error {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	switch p.UserType {
	case models.UserTypeExplorer:
		p.Explorer = &models.ExplorerDetails{}
		return json.Unmarshal(raw, p.Explorer)
	default:
		p.Guide = &models.GuideDetails{}
		return json.Unmarshal(raw, p.Guide)
	}
}

func encodeDetails(p *models.Profile) ([]byte, error) {
	switch {
	case p.UserType == models.UserTypeExplorer && p.Explorer != nil:
		return json.Marshal(p.Explorer)
	case p.UserType == models.UserTypeGuide && p.Guide != nil:
		return json.Marshal(p.Guide)
	default:
		return []byte("{}"), nil
	}
}

func encodeImages(images []models.Image) ([]byte, error) {
	if images == nil {
		images = []models.Image{}
	}
	return json.Marshal(images)
}

// nullableCountry mirrors the explorer country into its own column
func nullableCountry(p *models.Profile) *string {
	if c := p.Country(); c != "" {
		return &c
	}
	return nil
}

func (c *Client) getProfile(ctx context.Context, operation, whereClause string, args ...any) (*models.Profile, error) {
	start := time.Now()

	query := fmt.Sprintf(`SELECT %s FROM profiles p WHERE %s`, profileColumns, whereClause)

	profile, _, err := scanProfile(c.pool.QueryRow(ctx, query, args...))
	err = notFound(err, "profile")
	observe(ctx, operation, start, err)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// GetProfileByID fetches a profile by its UUID
func (c *Client) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	return c.getProfile(ctx, "getProfileByID", "p.id = $1", id)
}

// GetProfileBySlug fetches a profile by slug
func (c *Client) GetProfileBySlug(ctx context.Context, slug string) (*models.Profile, error) {
	return c.getProfile(ctx, "getProfileBySlug", "p.slug = $1", slug)
}

// GetProfileByEmail fetches a profile by email, case-insensitively
func (c *Client) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return c.getProfile(ctx, "getProfileByEmail", "p.email = $1", strings.ToLower(strings.TrimSpace(email)))
}

// GetProfileByVerificationToken fetches an unverified profile by its email verification token
func (c *Client) GetProfileByVerificationToken(ctx context.Context, token string) (*models.Profile, error) {
	return c.getProfile(ctx, "getProfileByVerificationToken",
		"p.verification_token = $1 AND p.email_verified = FALSE", token)
}

// GetProfileByResetTokenHash fetches a profile whose reset token hash matches and has not expired
func (c *Client) GetProfileByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.Profile, error) {
	return c.getProfile(ctx, "getProfileByResetTokenHash",
		"p.reset_token_hash = $1 AND p.reset_expires > $2", tokenHash, now)
}

func (c *Client) listProfiles(ctx context.Context, operation, whereClause string, args ...any) ([]*models.Profile, error) {
	start := time.Now()

	query := fmt.Sprintf(`SELECT %s FROM profiles p %s ORDER BY p.created_at DESC`, profileColumns, whereClause)

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		observe(ctx, operation, start, err)
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*models.Profile, 0)
	for rows.Next() {
		profile, _, scanErr := scanProfile(rows)
		if scanErr != nil {
			observe(ctx, operation, start, scanErr)
			return nil, fmt.Errorf("failed to scan profile row: %w", scanErr)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		observe(ctx, operation, start, err)
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}

	observe(ctx, operation, start, nil, zap.Int("count", len(profiles)))
	return profiles, nil
}

// ListProfiles returns every profile, newest first
func (c *Client) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	return c.listProfiles(ctx, "listProfiles", "")
}

// ListActiveProfiles returns active profiles of one user type, newest first
func (c *Client) ListActiveProfiles(ctx context.Context, userType models.UserType) ([]*models.Profile, error) {
	return c.listProfiles(ctx, "listActiveProfiles", "WHERE p.active = TRUE AND p.user_type = $1", string(userType))
}

// BackfillCandidate is a profile that lacks a slug or still stores legacy image strings
type BackfillCandidate struct {
	Profile      *models.Profile
	LegacyImages bool
}

// ListBackfillCandidates returns profiles without a slug or with bare-string images
func (c *Client) ListBackfillCandidates(ctx context.Context) ([]*BackfillCandidate, error) {
	start := time.Now()
	operation := "listBackfillCandidates"

	query := fmt.Sprintf(`
		SELECT %s FROM profiles p
		WHERE p.slug IS NULL
		   OR EXISTS (SELECT 1 FROM jsonb_array_elements(p.images) e WHERE jsonb_typeof(e) = 'string')
		ORDER BY p.created_at ASC`, profileColumns)

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		observe(ctx, operation, start, err)
		return nil, fmt.Errorf("failed to query backfill candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]*BackfillCandidate, 0)
	for rows.Next() {
		profile, rawImages, scanErr := scanProfile(rows)
		if scanErr != nil {
			observe(ctx, operation, start, scanErr)
			return nil, fmt.Errorf("failed to scan profile row: %w", scanErr)
		}
		candidates = append(candidates, &BackfillCandidate{
			Profile:      profile,
			LegacyImages: models.HasLegacyImages(rawImages),
		})
	}

	if err := rows.Err(); err != nil {
		observe(ctx, operation, start, err)
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}

	observe(ctx, operation, start, nil, zap.Int("count", len(candidates)))
	return candidates, nil
}

// SlugExists reports whether a profile other than excludeID holds slug
func (c *Client) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	start := time.Now()

	var exists bool
	err := c.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM profiles WHERE slug = $1 AND ($2 = '' OR id::text <> $2))`,
		slug, excludeID,
	).Scan(&exists)

	observe(ctx, "slugExists", start, err)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// CreateProfile inserts a new profile. Email and slug collisions return
// ErrEmailTaken and ErrSlugTaken.
func (c *Client) CreateProfile(ctx context.Context, p *models.Profile) error {
	start := time.Now()
	operation := "createProfile"

	details, err := encodeDetails(p)
	if err != nil {
		return fmt.Errorf("failed to encode details: %w", err)
	}
	images, err := encodeImages(p.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}

	query := `
		INSERT INTO profiles (
			id, email, slug, name, location, country, lat, lng, category, price,
			youtube_embed, role, user_type, details, images, active, email_verified,
			password_hash, verification_token, created_at, updated_at
		) VALUES (
			$1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17,
			$18, NULLIF($19, ''), $20, $20
		)`

	_, err = c.pool.Exec(ctx, query,
		p.ID, strings.ToLower(strings.TrimSpace(p.Email)), p.Slug, p.Name, p.Location, nullableCountry(p),
		p.Lat, p.Lng, p.Category, p.Price,
		p.YouTubeEmbed, string(p.Role), string(p.UserType), details, images, p.Active, p.EmailVerified,
		p.PasswordHash, p.VerificationToken, p.CreatedAt,
	)
	err = mapWriteError(err, "insert profile")
	observe(ctx, operation, start, err, zap.String("slug", p.Slug))
	return err
}

// updateProfileQuery leaves images alone; galleries change only through UpdateImages
const updateProfileQuery = `
	UPDATE profiles SET
		slug = NULLIF($2, ''), name = $3, location = $4, country = $5, lat = $6, lng = $7,
		category = $8, price = $9, youtube_embed = $10, details = $11,
		updated_at = NOW()
	WHERE id = $1`

// UpdateProfile writes the editable fields of p, including its slug
func (c *Client) UpdateProfile(ctx context.Context, p *models.Profile) error {
	start := time.Now()
	operation := "updateProfile"

	details, err := encodeDetails(p)
	if err != nil {
		return fmt.Errorf("failed to encode details: %w", err)
	}

	tag, err := c.pool.Exec(ctx, updateProfileQuery,
		p.ID, p.Slug, p.Name, p.Location, nullableCountry(p), p.Lat, p.Lng,
		p.Category, p.Price, p.YouTubeEmbed, details,
	)
	if err == nil && tag.RowsAffected() == 0 {
		err = notFound(pgx.ErrNoRows, "profile")
	}
	err = mapWriteError(err, "update profile")
	observe(ctx, operation, start, err, zap.String("profile_id", p.ID))
	return err
}

func (c *Client) execByID(ctx context.Context, operation, query string, args ...any) error {
	start := time.Now()

	tag, err := c.pool.Exec(ctx, query, args...)
	if err == nil && tag.RowsAffected() == 0 {
		err = notFound(pgx.ErrNoRows, "profile")
	}
	err = mapWriteError(err, operation)
	observe(ctx, operation, start, err)
	return err
}

// UpdateSlug sets only the slug of a profile
func (c *Client) UpdateSlug(ctx context.Context, id, slug string) error {
	return c.execByID(ctx, "updateSlug",
		`UPDATE profiles SET slug = NULLIF($2, ''), updated_at = NOW() WHERE id = $1`, id, slug)
}

// UpdateImages replaces the image gallery of a profile
func (c *Client) UpdateImages(ctx context.Context, id string, images []models.Image) error {
	raw, err := encodeImages(images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}
	return c.execByID(ctx, "updateImages",
		`UPDATE profiles SET images = $2, updated_at = NOW() WHERE id = $1`, id, raw)
}

// SetActive changes the public visibility of a profile
func (c *Client) SetActive(ctx context.Context, id string, active bool) error {
	return c.execByID(ctx, "setActive",
		`UPDATE profiles SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
}

// MarkEmailVerified flags the email as verified and clears the verification token
func (c *Client) MarkEmailVerified(ctx context.Context, id string) error {
	return c.execByID(ctx, "markEmailVerified",
		`UPDATE profiles SET email_verified = TRUE, verification_token = NULL, updated_at = NOW() WHERE id = $1`, id)
}

// SetResetToken stores the hash of a password reset token with its expiry
func (c *Client) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	return c.execByID(ctx, "setResetToken",
		`UPDATE profiles SET reset_token_hash = $2, reset_expires = $3, updated_at = NOW() WHERE id = $1`,
		id, tokenHash, expires)
}

// UpdatePassword stores a new password hash and clears any reset token
func (c *Client) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return c.execByID(ctx, "updatePassword",
		`UPDATE profiles SET password_hash = $2, reset_token_hash = NULL, reset_expires = NULL, updated_at = NOW() WHERE id = $1`,
		id, passwordHash)
}

// DeleteProfile removes a profile. Its reviews go with it (ON DELETE CASCADE),
// so every guide the profile reviewed gets its rating recomputed in the same
// transaction.
func (c *Client) DeleteProfile(ctx context.Context, id string) error {
	start := time.Now()

	guideIDs, err := c.deleteProfile(ctx, id)
	observe(ctx, "deleteProfile", start, err,
		zap.String("profile_id", id),
		zap.Int("ratings_recomputed", len(guideIDs)),
	)
	return err
}

func (c *Client) deleteProfile(ctx context.Context, id string) (guideIDs []string, err error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
		}
	}()

	// Same lock CreateReviewAndAggregate takes, in a fixed order
	rows, err := tx.Query(ctx, `
		SELECT id::text FROM profiles
		WHERE id IN (SELECT guide_id FROM reviews WHERE explorer_id = $1 AND guide_id <> $1)
		ORDER BY id
		FOR UPDATE`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock reviewed guides: %w", err)
	}
	guideIDs, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to lock reviewed guides: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return nil, mapWriteError(err, "delete profile")
	}
	if tag.RowsAffected() == 0 {
		return nil, notFound(pgx.ErrNoRows, "profile")
	}

	for _, guideID := range guideIDs {
		if _, err = refreshRating(ctx, tx, guideID); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}
	return guideIDs, nil
}
