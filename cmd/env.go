package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/pankajverma010101-svg/predict-cpi/internal/pricing"
	"github.com/pankajverma010101-svg/predict-cpi/internal/store"
)

// openStore builds the configured store backend and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// loadEngine loads every pricing table the config points at. Missing optional
// tables (consumer, models) log nothing here; their branches fail with the
// engine's own errors.
func loadEngine() (*pricing.Engine, error) {
	t := cfg.Tables

	general, err := pricing.LoadRules(t.RateCardPath, t.GeneralSheet)
	if err != nil {
		return nil, eris.Wrap(err, "load general rate card")
	}
	acuityB2B, err := pricing.LoadRules(t.RateCardPath, t.AcuityB2BSheet)
	if err != nil {
		return nil, eris.Wrap(err, "load acuity b2b rate card")
	}
	acuityB2C, err := pricing.LoadRules(t.RateCardPath, t.AcuityB2CSheet)
	if err != nil {
		return nil, eris.Wrap(err, "load acuity b2c rate card")
	}
	clients, err := pricing.LoadClientRules(t.ClientsPath)
	if err != nil {
		return nil, eris.Wrap(err, "load client rules")
	}
	consumer, err := pricing.LoadConsumerTable(t.ConsumerPath)
	if err != nil {
		return nil, eris.Wrap(err, "load consumer table")
	}
	withAsk, err := pricing.LoadModel(t.ModelPath)
	if err != nil {
		return nil, eris.Wrap(err, "load model")
	}
	noAsk, err := pricing.LoadModel(t.ModelNoAskPath)
	if err != nil {
		return nil, eris.Wrap(err, "load no-ask model")
	}

	return pricing.NewEngine(pricing.Tables{
		General:   general,
		AcuityB2B: acuityB2B,
		AcuityB2C: acuityB2C,
		Clients:   clients,
		Consumer:  consumer,
		WithAsk:   withAsk,
		NoAsk:     noAsk,
	}), nil
}
