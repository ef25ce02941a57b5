package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/outy-app/outy/internal/utils"
)

// Demo accounts created by Seed.
const (
	SeedHostEmail = "host@outy.ma"
	SeedUserEmail = "user@outy.ma"
)

const seedPlacesSQL = `INSERT INTO places (owner_id, name, category, city, vibe_tags, description, address, phone, whatsapp, rules, menu_pdf_url, reservation_mode)
VALUES
($1, 'Skyline Rooftop', 'Restaurant', 'Casablanca', ARRAY['Rooftop','Luxury'], 'Modern rooftop dining with panoramic views.', 'Boulevard d''Anfa, Casablanca', '+212600000001', '+212600000001', 'Smart casual. 21+ after 8pm.', 'https://res.cloudinary.com/demo/image/upload/v1312461204/sample.pdf', 'OUTY'),
($1, 'Medina Beats', 'Club', 'Marrakech', ARRAY['Party','Live Music'], 'High-energy club with Moroccan DJs.', 'Medina, Marrakech', '+212600000002', '+212600000002', 'Valid ID required.', NULL, 'PHONE'),
($1, 'Business Hub Cafe', 'Business', 'Rabat', ARRAY['Business','Networking'], 'Calm cafe ideal for networking meetups.', 'Avenue Mohammed VI, Rabat', '+212600000003', '+212600000003', 'Respect quiet hours.', NULL, 'LINK')`

const seedEventsSQL = `INSERT INTO events (owner_id, name, city, vibe_tags, date, time, description, address, rules, ticket_link, reservation_mode)
VALUES
($1, 'Casablanca Tech Mixer', 'Casablanca', ARRAY['Networking','Conference'], CURRENT_DATE + INTERVAL '7 days', '19:00', 'Tech leaders meet-up with lightning talks.', 'Tech Park, Casablanca', 'Bring business cards.', 'https://tickets.outy.ma/tech', 'OUTY'),
($1, 'Marrakech Sunset Sessions', 'Marrakech', ARRAY['Chill','Live Music'], CURRENT_DATE + INTERVAL '3 days', '18:00', 'Live music at sunset on the terrace.', 'Guéliz, Marrakech', 'First come first served seating.', NULL, 'PHONE')`

// Seed inserts the demo host, user, listings and review.  It only adds what
// is missing, so running it on every start is safe.
func Seed(ctx context.Context, db *sql.DB, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role, business_name) VALUES ($1, $2, 'business', 'Atlas Hospitality') ON CONFLICT (email) DO NOTHING`,
		SeedHostEmail, hash); err != nil {
		return fmt.Errorf("seed host: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role) VALUES ($1, $2, 'user') ON CONFLICT (email) DO NOTHING`,
		SeedUserEmail, hash); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	hostID, err := lookupID(ctx, db, `SELECT id FROM users WHERE email = $1`, SeedHostEmail)
	if err != nil {
		return fmt.Errorf("seed host id: %w", err)
	}
	if hostID != "" {
		if err := seedIfEmpty(ctx, db, "places", seedPlacesSQL, hostID); err != nil {
			return err
		}
		if err := seedIfEmpty(ctx, db, "events", seedEventsSQL, hostID); err != nil {
			return err
		}
	}

	placeID, err := lookupID(ctx, db, `SELECT id FROM places ORDER BY created_at LIMIT 1`)
	if err != nil {
		return fmt.Errorf("seed place id: %w", err)
	}
	userID, err := lookupID(ctx, db, `SELECT id FROM users WHERE email = $1`, SeedUserEmail)
	if err != nil {
		return fmt.Errorf("seed user id: %w", err)
	}
	if placeID != "" && userID != "" {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO reviews (user_id, related_type, related_id, rating, comment) VALUES ($1, 'place', $2, 5, 'Fantastic spot with great service!') ON CONFLICT DO NOTHING`,
			userID, placeID); err != nil {
			return fmt.Errorf("seed review: %w", err)
		}
	}
	log.Info().Msg("seed data ready")
	return nil
}

// seedIfEmpty runs insert only when table has no rows yet.  table is one of
// the fixed names above, never user input.
func seedIfEmpty(ctx context.Context, db *sql.DB, table, insert, hostID string) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return fmt.Errorf("count %s: %w", table, err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.ExecContext(ctx, insert, hostID); err != nil {
		return fmt.Errorf("seed %s: %w", table, err)
	}
	return nil
}

func lookupID(ctx context.Context, db *sql.DB, query string, args ...any) (string, error) {
	var id string
	err := db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}
