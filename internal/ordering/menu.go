package ordering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

type NewMenuItem struct {
	Name      string
	Price     models.Money
	ImageURL  string
	Available bool
}

// MenuItemChanges holds the fields a staff edit sets. Nil means unchanged.
type MenuItemChanges struct {
	Name      *string
	Price     *models.Money
	ImageURL  *string
	Available *bool
}

func validateMenuName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ValidationError{Field: "name", Reason: "required"}
	}
	return name, nil
}

func validateMenuPrice(price models.Money) error {
	if price.IsNegative() {
		return ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return nil
}

func menuErr(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return NotFoundError{Resource: "menu item", ID: id}
	}
	return fmt.Errorf("menu item %s: %w", id, err)
}

// ListMenu returns items sorted by name.
func (s *Service) ListMenu(ctx context.Context, onlyAvailable bool) ([]models.MenuItem, error) {
	items, err := s.store.Menu.List(ctx, onlyAvailable)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	return items, nil
}

func (s *Service) GetMenuItem(ctx context.Context, id string) (models.MenuItem, error) {
	item, err := s.store.Menu.Get(ctx, id)
	if err != nil {
		return models.MenuItem{}, menuErr(id, err)
	}
	return item, nil
}

func (s *Service) CreateMenuItem(ctx context.Context, in NewMenuItem) (models.MenuItem, error) {
	name, err := validateMenuName(in.Name)
	if err != nil {
		return models.MenuItem{}, err
	}
	if err := validateMenuPrice(in.Price); err != nil {
		return models.MenuItem{}, err
	}
	now := s.now()
	item := models.MenuItem{
		ID:        newID(),
		Name:      name,
		Price:     in.Price,
		ImageURL:  strings.TrimSpace(in.ImageURL),
		Available: in.Available,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Menu.Insert(ctx, item); err != nil {
		return models.MenuItem{}, fmt.Errorf("insert menu item: %w", err)
	}
	s.logger.Info().Str("itemId", item.ID).Str("name", item.Name).Msg("menu item created")
	return item, nil
}

func (s *Service) UpdateMenuItem(ctx context.Context, id string, ch MenuItemChanges) (models.MenuItem, error) {
	patch := store.MenuPatch{
		Price:     ch.Price,
		Available: ch.Available,
		UpdatedAt: s.now(),
	}
	if ch.Name != nil {
		name, err := validateMenuName(*ch.Name)
		if err != nil {
			return models.MenuItem{}, err
		}
		patch.Name = &name
	}
	if ch.Price != nil {
		if err := validateMenuPrice(*ch.Price); err != nil {
			return models.MenuItem{}, err
		}
	}
	if ch.ImageURL != nil {
		url := strings.TrimSpace(*ch.ImageURL)
		patch.ImageURL = &url
	}
	item, err := s.store.Menu.Update(ctx, id, patch)
	if err != nil {
		return models.MenuItem{}, menuErr(id, err)
	}
	return item, nil
}

// ToggleAvailability flips the available flag and returns the new state.
func (s *Service) ToggleAvailability(ctx context.Context, id string) (models.MenuItem, error) {
	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return models.MenuItem{}, err
	}
	available := !item.Available
	return s.UpdateMenuItem(ctx, id, MenuItemChanges{Available: &available})
}

func (s *Service) DeleteMenuItem(ctx context.Context, id string) error {
	if err := s.store.Menu.Delete(ctx, id); err != nil {
		return menuErr(id, err)
	}
	s.logger.Info().Str("itemId", id).Msg("menu item deleted")
	return nil
}

// SetMenuImage points the item at a stored image and returns the URL it
// replaced so the caller can remove the old object.
func (s *Service) SetMenuImage(ctx context.Context, id, url string) (models.MenuItem, string, error) {
	current, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return models.MenuItem{}, "", err
	}
	item, err := s.UpdateMenuItem(ctx, id, MenuItemChanges{ImageURL: &url})
	if err != nil {
		return models.MenuItem{}, "", err
	}
	return item, current.ImageURL, nil
}
