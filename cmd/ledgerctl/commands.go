package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"sole-ledger/internal/bankimport"
	"sole-ledger/internal/database"
	"sole-ledger/internal/dto"
	"sole-ledger/internal/service"

	"github.com/google/uuid"
)

type migrateCmd struct {
	Up      migrateUpCmd      `cmd:"" help:"Apply all pending migrations."`
	Down    migrateDownCmd    `cmd:"" help:"Roll back migrations."`
	Version migrateVersionCmd `cmd:"" help:"Print the current schema version."`
}

type migrateUpCmd struct{}

func (c *migrateUpCmd) Run(g *Globals) error {
	cfg, log, err := g.load()
	if err != nil {
		return err
	}
	return database.MigrateUp(cfg.Database.URL(), log)
}

type migrateDownCmd struct {
	Steps int `default:"1" help:"Number of migrations to roll back."`
}

func (c *migrateDownCmd) Run(g *Globals) error {
	cfg, log, err := g.load()
	if err != nil {
		return err
	}
	return database.MigrateDown(cfg.Database.URL(), c.Steps, log)
}

type migrateVersionCmd struct{}

func (c *migrateVersionCmd) Run(g *Globals) error {
	cfg, _, err := g.load()
	if err != nil {
		return err
	}
	version, dirty, err := database.Version(cfg.Database.URL())
	if err != nil {
		return err
	}
	fmt.Printf("version %d (dirty: %t)\n", version, dirty)
	return nil
}

type seedCmd struct {
	Email    string `default:"demo@sole-ledger.ge" help:"Demo user email."`
	Password string `default:"demo-password" help:"Demo user password."`
}

func (c *seedCmd) Run(g *Globals) error {
	ctx := context.Background()
	s, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = s.services.Auth.Register(ctx, &dto.RegisterRequest{
		Username: "demo", Email: c.Email, Password: c.Password,
	})
	if err != nil && !errors.Is(err, service.ErrUserExists) {
		return fmt.Errorf("register demo user: %w", err)
	}
	userID, err := s.userID(ctx, c.Email)
	if err != nil {
		return err
	}

	taxID := "01001012345"
	entity, err := s.services.Entity.Create(ctx, userID, &dto.CreateEntityRequest{
		DisplayName: "Demo Design Studio",
		TaxStatus:   "SMALL_BUSINESS",
		TaxID:       &taxID,
	})
	if err != nil {
		return fmt.Errorf("create entity: %w", err)
	}

	categories := []dto.CreateCategoryRequest{
		{Name: "Client payments", Type: "INCOME"},
		{Name: "Software", Type: "EXPENSE"},
		{Name: "Transport", Type: "EXPENSE"},
	}
	for i := range categories {
		if _, err := s.services.Category.Create(ctx, userID, entity.ID, &categories[i]); err != nil {
			return fmt.Errorf("create category %s: %w", categories[i].Name, err)
		}
	}

	rules := []dto.CreateRuleRequest{
		{Priority: 10, Condition: dto.RuleCondition{DescriptionContains: []string{"adobe", "figma", "github"}},
			Action: dto.RuleAction{SetCategoryByName: "Software"}},
		{Priority: 20, Condition: dto.RuleCondition{DescriptionContains: []string{"uber", "bolt", "yandex"}},
			Action: dto.RuleAction{SetCategoryByName: "Transport"}},
		{Priority: 30, Condition: dto.RuleCondition{DescriptionContains: []string{"invoice", "payment from"}},
			Action: dto.RuleAction{SetCategoryByName: "Client payments"}},
	}
	for i := range rules {
		if _, err := s.services.Category.CreateRule(ctx, userID, entity.ID, &rules[i]); err != nil {
			return fmt.Errorf("create rule: %w", err)
		}
	}

	fmt.Printf("user:   %s (%s)\nentity: %s\n", c.Email, userID, entity.ID)
	return nil
}

type importCmd struct {
	User    string `required:"" help:"Email of the entity owner."`
	Entity  string `required:"" help:"Entity ID."`
	Bank    string `required:"" enum:"BOG,TBC,OTHER" help:"Bank preset (BOG, TBC, OTHER)."`
	Mapping string `help:"Column mapping as JSON, required for OTHER."`
	File    string `arg:"" type:"existingfile" help:"CSV file to import."`
}

func (c *importCmd) Run(g *Globals) error {
	entityID, err := uuid.Parse(c.Entity)
	if err != nil {
		return fmt.Errorf("invalid entity id %q: %w", c.Entity, err)
	}
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}

	req := dto.ImportRequest{Bank: c.Bank}
	if c.Mapping != "" {
		var mapping bankimport.Mapping
		if err := json.Unmarshal([]byte(c.Mapping), &mapping); err != nil {
			return fmt.Errorf("parse mapping: %w", err)
		}
		req.Mapping = &mapping
	}

	ctx := context.Background()
	s, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	userID, err := s.userID(ctx, c.User)
	if err != nil {
		return err
	}

	resp, err := s.services.Bank.Import(ctx, userID, entityID, &req, data)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d transactions\n", resp.Imported)
	return nil
}

type closePeriodCmd struct {
	User   string `required:"" help:"Email of the entity owner."`
	Entity string `required:"" help:"Entity ID."`
	Start  string `help:"Period start (YYYY-MM-DD). Defaults to the first day of the current month."`
	End    string `help:"Period end, exclusive. Defaults to the first day of the next month."`
}

func (c *closePeriodCmd) Run(g *Globals) error {
	entityID, err := uuid.Parse(c.Entity)
	if err != nil {
		return fmt.Errorf("invalid entity id %q: %w", c.Entity, err)
	}

	ctx := context.Background()
	s, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	userID, err := s.userID(ctx, c.User)
	if err != nil {
		return err
	}

	period, err := s.services.Tax.ClosePeriod(ctx, userID, entityID, &dto.ClosePeriodRequest{
		PeriodStart: c.Start,
		PeriodEnd:   c.End,
	})
	if err != nil {
		return err
	}

	fmt.Printf("period %s .. %s\nturnover %s GEL, rate %s, tax due %s GEL\n",
		period.PeriodStart.Format("2006-01-02"), period.PeriodEnd.Format("2006-01-02"),
		period.Turnover.StringFixed(2), period.TaxRate.String(), period.TaxDue.StringFixed(2))
	return nil
}
