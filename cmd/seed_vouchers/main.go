// seed_vouchers registra comprobantes de demostración a través del ciclo de vida
// (con su numeración, impuestos y eventos de cierre) en el almacén configurado,
// y muestra un JWT de desarrollo para un administrador demo.
//
// Uso: go run ./cmd/seed_vouchers [cantidad]
// Por defecto crea 12 comprobantes. Lee la misma configuración que cmd/api.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Vouchers-api/internal/application/dto"
	"github.com/jhoicas/Vouchers-api/internal/application/vouchers"
	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/jhoicas/Vouchers-api/internal/infrastructure/store"
	"github.com/jhoicas/Vouchers-api/pkg/config"
	"github.com/jhoicas/Vouchers-api/pkg/jwt"
	"github.com/jhoicas/Vouchers-api/pkg/logger"
)

var (
	demoAdmin     = entity.Actor{ID: "00000000-0000-0000-0000-00000000a001", Name: "Administrador Demo"}
	demoRequester = entity.Actor{ID: "00000000-0000-0000-0000-00000000b001", Name: "Recepción"}
)

type sample struct {
	title       string
	category    entity.Category
	amount      string
	method      entity.PaymentMethod
	beneficiary string
	kind        entity.BeneficiaryType
}

var samples = []sample{
	{"Reparación de aire acondicionado", entity.CategoryMaintenance, "1850.00", entity.PaymentBankTransfer, "Frío Total", entity.BeneficiarySupplier},
	{"Factura de electricidad", entity.CategoryUtilities, "4200.50", entity.PaymentBankTransfer, "Compañía Eléctrica", entity.BeneficiaryVendor},
	{"Anticipo de nómina", entity.CategorySalaries, "3000.00", entity.PaymentCash, "Ahmed Salem", entity.BeneficiaryEmployee},
	{"Toallas y sábanas", entity.CategorySupplies, "975.25", entity.PaymentCreditCard, "Textiles del Golfo", entity.BeneficiarySupplier},
	{"Compra de mercado", entity.CategoryFood, "640.00", entity.PaymentCash, "Mercado Central", entity.BeneficiaryVendor},
	{"Servicio de lavandería", entity.CategoryCleaning, "310.00", entity.PaymentCheck, "Lavandería Express", entity.BeneficiaryVendor},
	{"Publicidad en redes", entity.CategoryMarketing, "1200.00", entity.PaymentCreditCard, "Agencia Norte", entity.BeneficiarySupplier},
	{"Reembolso de taxi", entity.CategoryOther, "45.00", entity.PaymentCash, "Laila Omar", entity.BeneficiaryIndividual},
}

func main() {
	n := 12
	if len(os.Args) > 1 {
		v, err := strconv.Atoi(os.Args[1])
		if err != nil || v < 1 {
			fmt.Fprintf(os.Stderr, "cantidad inválida: %q\n", os.Args[1])
			os.Exit(1)
		}
		n = v
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	repo, closeStore, err := store.OpenVouchers(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir almacén: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	uc := vouchers.NewLifecycleUseCase(repo, nil, vouchers.LifecycleConfig{
		MaxAttempts:          cfg.Voucher.MaxAttempts,
		StoreTimeout:         cfg.Store.Timeout,
		DefaultTaxPercentage: cfg.Voucher.DefaultTaxPercentage,
		DefaultCurrency:      cfg.Voucher.DefaultCurrency,
	}, log)

	created := 0
	for i := 0; i < n; i++ {
		s := samples[i%len(samples)]
		v, err := uc.Submit(ctx, demoRequester, dto.SubmitVoucherRequest{
			Title:           s.title,
			Category:        string(s.category),
			Amount:          decimal.RequireFromString(s.amount),
			PaymentMethod:   string(s.method),
			BeneficiaryName: s.beneficiary,
			BeneficiaryType: string(s.kind),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Comprobante %d: %v\n", i+1, err)
			os.Exit(1)
		}
		if err := advance(ctx, uc, v, i); err != nil {
			fmt.Fprintf(os.Stderr, "Transición %s: %v\n", v.VoucherNumber, err)
			os.Exit(1)
		}
		created++
	}
	fmt.Printf("Creados %d comprobantes en %s\n", created, cfg.Store.Driver)

	tok, err := jwt.Generate(cfg.JWT.Secret, demoAdmin.ID, demoAdmin.Name, jwt.RoleAdmin, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar JWT (¿JWT_SECRET vacío?): %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("JWT admin demo (%d min):\n%s\n", cfg.JWT.Expiration, tok)
}

// advance reparte los comprobantes entre todos los estados.
func advance(ctx context.Context, uc *vouchers.LifecycleUseCase, v *entity.Voucher, i int) error {
	var err error
	switch i % 5 {
	case 0: // queda pending
	case 1:
		_, err = uc.Approve(ctx, v.ID, demoAdmin, "aprobado en seed")
	case 2:
		if _, err = uc.Approve(ctx, v.ID, demoAdmin, ""); err == nil {
			_, err = uc.MarkPaid(ctx, v.ID, demoAdmin, fmt.Sprintf("TRX-%04d", i), "")
		}
	case 3:
		_, err = uc.Reject(ctx, v.ID, demoAdmin, "falta soporte")
	case 4:
		_, err = uc.Cancel(ctx, v.ID, demoAdmin, "duplicado")
	}
	return err
}
