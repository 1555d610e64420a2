package memory

import (
	"context"
	"fmt"

	"ecotrace/internal/models"
	"ecotrace/internal/repositories"
)

// ===============================
// USERS
// ===============================

type userRepo struct{ v *view }

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return r.v.write(func(st *state) error {
		for _, u := range st.users {
			if u.Username == user.Username {
				return fmt.Errorf("create user: %w (users_username_key)", repositories.ErrDuplicate)
			}
			if equalFold(u.Email, user.Email) {
				return fmt.Errorf("create user: %w (users_email_key)", repositories.ErrDuplicate)
			}
		}
		st.nextUserID++
		user.ID = st.nextUserID
		user.CreatedAt = r.v.store.now()
		st.users = append(st.users, *user)
		return nil
	})
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.find("get user by id", func(u models.User) bool { return u.ID == id })
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find("get user by email", func(u models.User) bool { return equalFold(u.Email, email) })
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find("get user by username", func(u models.User) bool { return u.Username == username })
}

func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	var out []*models.User
	err := r.v.read(func(st *state) error {
		for _, u := range st.users {
			u := u
			out = append(out, &u)
		}
		return nil
	})
	return out, err
}

func (r *userRepo) find(op string, match func(models.User) bool) (*models.User, error) {
	var found *models.User
	err := r.v.read(func(st *state) error {
		for _, u := range st.users {
			if match(u) {
				u := u
				found = &u
				return nil
			}
		}
		return notFound(op)
	})
	return found, err
}

// ===============================
// ACTIVITIES
// ===============================

type activityRepo struct{ v *view }

func (r *activityRepo) Create(ctx context.Context, activity *models.Activity) error {
	return r.v.write(func(st *state) error {
		if !st.userExists(activity.UserID) {
			return fmt.Errorf("create activity: %w (activities_user_id_fkey)", repositories.ErrMissingReference)
		}
		if activity.Quantity < 0 {
			return fmt.Errorf("create activity: %w (activities_quantity_check)", repositories.ErrCheckViolation)
		}
		now := r.v.store.now()
		st.nextActivityID++
		activity.ID = st.nextActivityID
		activity.Date = truncateToDay(now)
		activity.CreatedAt = now
		st.activities = append(st.activities, *activity)
		return nil
	})
}

func (r *activityRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Activity, error) {
	var out []*models.Activity
	err := r.v.read(func(st *state) error {
		for _, a := range st.activities {
			if a.UserID == userID {
				a := a
				out = append(out, &a)
			}
		}
		return nil
	})
	return out, err
}

// ===============================
// EMISSIONS
// ===============================

type emissionRepo struct{ v *view }

func (r *emissionRepo) Create(ctx context.Context, emission *models.Emission) error {
	return r.v.write(func(st *state) error {
		exists := false
		for _, a := range st.activities {
			if a.ID == emission.ActivityID {
				exists = true
				break
			}
		}
		if !exists {
			return fmt.Errorf("create emission: %w (emissions_activity_id_fkey)", repositories.ErrMissingReference)
		}
		for _, e := range st.emissions {
			if e.ActivityID == emission.ActivityID {
				return fmt.Errorf("create emission: %w (emissions_activity_id_key)", repositories.ErrDuplicate)
			}
		}
		st.nextEmissionID++
		emission.ID = st.nextEmissionID
		emission.CalculatedAt = r.v.store.now()
		st.emissions = append(st.emissions, *emission)
		return nil
	})
}

func (r *emissionRepo) GetByActivityID(ctx context.Context, activityID int64) (*models.Emission, error) {
	var found *models.Emission
	err := r.v.read(func(st *state) error {
		for _, e := range st.emissions {
			if e.ActivityID == activityID {
				e := e
				found = &e
				return nil
			}
		}
		return notFound("get emission")
	})
	return found, err
}

func (r *emissionRepo) ListByUser(ctx context.Context, userID int64) ([]models.ActivityEmission, error) {
	var out []models.ActivityEmission
	err := r.v.read(func(st *state) error {
		byActivity := make(map[int64]float64, len(st.emissions))
		for _, e := range st.emissions {
			byActivity[e.ActivityID] = e.EmissionKg
		}
		for _, a := range st.activities {
			if a.UserID != userID {
				continue
			}
			item := models.ActivityEmission{ActivityID: a.ID, ActivityType: a.ActivityType}
			if kg, ok := byActivity[a.ID]; ok {
				item.EmissionKg = &kg
			}
			out = append(out, item)
		}
		return nil
	})
	return out, err
}

func (r *emissionRepo) SumByUser(ctx context.Context, userID int64) (float64, error) {
	var total float64
	err := r.v.read(func(st *state) error {
		total = st.sumEmissions(userID)
		return nil
	})
	return total, err
}

// ===============================
// BADGES
// ===============================

type badgeRepo struct{ v *view }

func (r *badgeRepo) Create(ctx context.Context, badge *models.Badge) error {
	return r.v.write(func(st *state) error {
		if !st.userExists(badge.UserID) {
			return fmt.Errorf("create badge: %w (badges_user_id_fkey)", repositories.ErrMissingReference)
		}
		st.nextBadgeID++
		badge.ID = st.nextBadgeID
		badge.EarnedOn = truncateToDay(r.v.store.now())
		st.badges = append(st.badges, *badge)
		return nil
	})
}

func (r *badgeRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Badge, error) {
	var out []*models.Badge
	err := r.v.read(func(st *state) error {
		for _, b := range st.badges {
			if b.UserID == userID {
				b := b
				out = append(out, &b)
			}
		}
		return nil
	})
	return out, err
}

func (r *badgeRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.v.read(func(st *state) error {
		n = st.countBadges(userID)
		return nil
	})
	return n, err
}
