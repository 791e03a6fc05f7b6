package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/Jefferson1994/AppControlBarberias/internal/apierror"
	"github.com/Jefferson1994/AppControlBarberias/internal/dto"
	"github.com/Jefferson1994/AppControlBarberias/internal/model"
	"github.com/Jefferson1994/AppControlBarberias/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxFiler files a formal invoice with the tax authority. A filing error
// aborts the whole sale transaction: a formal invoice that the authority
// never saw must not exist.
type TaxFiler interface {
	FileInvoice(ctx context.Context, sale *model.Sale, business *model.Business) (authorization string, err error)
}

// DocumentRenderer produces the printable receipt. Rendering happens after
// commit; a failure degrades the response but never undoes the sale.
type DocumentRenderer interface {
	RenderReceipt(sale *model.Sale, business *model.Business) ([]byte, error)
}

// ReceiptMailer hands the rendered receipt off for asynchronous delivery.
type ReceiptMailer interface {
	EnqueueReceipt(ctx context.Context, to string, sale *model.Sale, document []byte) error
}

// SaleService runs the atomic sale pipeline: price resolution, stock
// decrement, receipt numbering, persistence, the ledger entry, and (for
// formal invoices) tax filing, all in one transaction.
type SaleService interface {
	ProcessSale(ctx context.Context, userID uuid.UUID, req dto.ProcessSaleRequest) (*dto.ProcessSaleResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	saleRepo     repository.SaleRepository
	shiftRepo    repository.ShiftRepository
	catalogRepo  repository.CatalogRepository
	businessRepo repository.BusinessRepository
	refDataRepo  repository.RefDataRepository
	ledger       LedgerService
	sequences    SequenceService
	filer        TaxFiler
	renderer     DocumentRenderer
	mailer       ReceiptMailer
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	shiftRepo repository.ShiftRepository,
	catalogRepo repository.CatalogRepository,
	businessRepo repository.BusinessRepository,
	refDataRepo repository.RefDataRepository,
	ledger LedgerService,
	sequences SequenceService,
	filer TaxFiler,
	renderer DocumentRenderer,
	mailer ReceiptMailer,
) SaleService {
	return &saleService{
		saleRepo:     saleRepo,
		shiftRepo:    shiftRepo,
		catalogRepo:  catalogRepo,
		businessRepo: businessRepo,
		refDataRepo:  refDataRepo,
		ledger:       ledger,
		sequences:    sequences,
		filer:        filer,
		renderer:     renderer,
		mailer:       mailer,
	}
}

// resolvedLine is a request line after catalog lookup: price decided, stock
// prechecked, name snapshotted.
type resolvedLine struct {
	itemKind  string
	productID *uuid.UUID
	serviceID *uuid.UUID
	itemName  string
	quantity  int
	unitPrice decimal.Decimal
	subtotal  decimal.Decimal
}

func (s *saleService) ProcessSale(ctx context.Context, userID uuid.UUID, req dto.ProcessSaleRequest) (*dto.ProcessSaleResponse, error) {
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		return nil, apierror.E(apierror.KindValidation, "invalid shift_id")
	}
	paymentMethodID, err := uuid.Parse(req.PaymentMethodID)
	if err != nil {
		return nil, apierror.E(apierror.KindValidation, "invalid payment_method_id")
	}
	var customerID *uuid.UUID
	if req.CustomerID != nil {
		id, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, apierror.E(apierror.KindValidation, "invalid customer_id")
		}
		customerID = &id
	}

	var (
		sale     *model.Sale
		movement *model.CashMovement
		saleKind model.MovementKind
		business *model.Business
	)
	txErr := runTx(ctx, s.saleRepo.DB(), func(tx *gorm.DB) error {
		shift, err := s.shiftRepo.LockShiftTx(tx, shiftID)
		if err != nil {
			return apierror.E(apierror.KindShiftNotFound, "shift not found")
		}
		if shift.Status != model.ShiftOpen {
			return apierror.E(apierror.KindShiftNotOpen, "shift is not open")
		}

		employee, err := s.businessRepo.FindEmployeeByIDTx(tx, shift.OperatorID)
		if err != nil {
			return err
		}
		if employee.UserID != userID {
			return apierror.E(apierror.KindOperatorMismatch, "sales must be registered by the shift's operator")
		}

		business, err = s.businessRepo.FindBusinessTx(tx, shift.BusinessID)
		if err != nil {
			return err
		}
		if !business.Active {
			return apierror.E(apierror.KindBusinessInactive, "business is inactive")
		}

		rd, err := s.refDataRepo.LoadTx(tx)
		if err != nil {
			return err
		}
		if _, err := s.refDataRepo.FindPaymentMethod(tx, paymentMethodID); err != nil {
			return apierror.E(apierror.KindValidation, "payment method not found or inactive")
		}

		// Resolve and validate every line before touching any stock row, so a
		// failure on line N never leaves lines 1..N-1 decremented.
		lines, err := s.resolveLinesTx(tx, business.ID, req.Lines)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if line.itemKind != model.ItemProduct {
				continue
			}
			ok, err := s.catalogRepo.DecrementStockTx(tx, *line.productID, line.quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apierror.E(apierror.KindInsufficientStock,
					fmt.Sprintf("insufficient stock for %q", line.itemName))
			}
		}

		subtotal := decimal.Zero
		for _, line := range lines {
			subtotal = subtotal.Add(line.subtotal)
		}
		tax := subtotal.Mul(rd.TaxRatePct).Div(decimal.NewFromInt(100)).Round(2)
		total := subtotal.Add(tax)

		if business.EstablishmentCode == nil || employee.EmissionPointCode == nil {
			return apierror.E(apierror.KindMissingEmissionCodes,
				"business establishment code and operator emission point are required to issue receipts")
		}
		receiptNumber, err := s.sequences.AllocateTx(tx, *business.EstablishmentCode, *employee.EmissionPointCode)
		if err != nil {
			return err
		}

		receiptKind := model.ReceiptSimple
		if req.WantsFormalInvoice {
			receiptKind = model.ReceiptFormalInvoice
		}

		sale = &model.Sale{
			BusinessID:      business.ID,
			ShiftID:         shift.ID,
			OperatorID:      employee.ID,
			CustomerID:      customerID,
			PaymentMethodID: paymentMethodID,
			ReceiptKind:     receiptKind,
			ReceiptNumber:   receiptNumber,
			Subtotal:        subtotal,
			Tax:             tax,
			Total:           total,
			Status:          model.SaleIssued,
			Notes:           req.Notes,
			IssuedAt:        time.Now(),
		}
		for _, line := range lines {
			sale.Lines = append(sale.Lines, model.SaleLineItem{
				ItemKind:  line.itemKind,
				ProductID: line.productID,
				ServiceID: line.serviceID,
				ItemName:  line.itemName,
				Quantity:  line.quantity,
				UnitPrice: line.unitPrice,
				Subtotal:  line.subtotal,
			})
		}
		if err := s.saleRepo.CreateTx(tx, sale); err != nil {
			return err
		}

		saleKind, err = rd.Kind(model.KindSale)
		if err != nil {
			return err
		}
		memo := "sale " + receiptNumber
		movement, err = s.ledger.AppendTx(tx, shift, saleKind, paymentMethodID, total, &sale.ID, &memo)
		if err != nil {
			return err
		}

		if receiptKind == model.ReceiptFormalInvoice {
			authorization, err := s.filer.FileInvoice(ctx, sale, business)
			if err != nil {
				return apierror.E(apierror.KindFilingFailed,
					fmt.Sprintf("tax authority rejected invoice %s: %v", receiptNumber, err))
			}
			if err := s.saleRepo.UpdateStatusTx(tx, sale.ID, model.SaleFiled); err != nil {
				return err
			}
			sale.Status = model.SaleFiled
			log.Info().
				Str("receipt_number", receiptNumber).
				Str("authorization", authorization).
				Msg("invoice filed")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("receipt_number", sale.ReceiptNumber).
		Str("total", sale.Total.String()).
		Msg("sale processed")

	resp := &dto.ProcessSaleResponse{
		Sale:     saleToResponse(sale),
		Movement: *movementToResponse(movement, saleKind),
	}
	s.attachDocument(ctx, resp, sale, business, customerID)
	return resp, nil
}

// attachDocument renders the receipt and, when the customer has an email,
// hands it to the mailer. Both steps run after commit and only degrade the
// response on failure.
func (s *saleService) attachDocument(ctx context.Context, resp *dto.ProcessSaleResponse,
	sale *model.Sale, business *model.Business, customerID *uuid.UUID) {

	if s.renderer == nil {
		return
	}
	document, err := s.renderer.RenderReceipt(sale, business)
	if err != nil {
		warning := "receipt document could not be rendered"
		resp.DocumentWarning = &warning
		log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("receipt rendering failed")
		return
	}
	encoded := base64.StdEncoding.EncodeToString(document)
	resp.Document = &encoded

	if s.mailer == nil || customerID == nil {
		return
	}
	customer, err := s.businessRepo.FindCustomerByID(ctx, *customerID)
	if err != nil || customer.Email == nil {
		return
	}
	if err := s.mailer.EnqueueReceipt(ctx, *customer.Email, sale, document); err != nil {
		log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("receipt email enqueue failed")
	}
}

// resolveLinesTx validates each request line against the catalog, locks
// product rows, prechecks stock and applies the price precedence:
// explicit override → discount price → promo price → list price.
func (s *saleService) resolveLinesTx(tx *gorm.DB, businessID uuid.UUID, reqLines []dto.SaleLineRequest) ([]resolvedLine, error) {
	lines := make([]resolvedLine, 0, len(reqLines))
	for i, rl := range reqLines {
		hasProduct := rl.ProductID != nil && *rl.ProductID != ""
		hasService := rl.ServiceID != nil && *rl.ServiceID != ""
		if hasProduct == hasService {
			return nil, apierror.E(apierror.KindInvalidLineItem,
				fmt.Sprintf("line %d must reference exactly one product or service", i+1))
		}
		if rl.Quantity <= 0 {
			return nil, apierror.E(apierror.KindInvalidLineItem,
				fmt.Sprintf("line %d quantity must be positive", i+1))
		}
		if rl.UnitPriceOverride != nil && rl.UnitPriceOverride.IsNegative() {
			return nil, apierror.E(apierror.KindInvalidLineItem,
				fmt.Sprintf("line %d price override must not be negative", i+1))
		}

		if hasProduct {
			id, err := uuid.Parse(*rl.ProductID)
			if err != nil {
				return nil, apierror.E(apierror.KindInvalidLineItem, fmt.Sprintf("line %d has an invalid product_id", i+1))
			}
			product, err := s.catalogRepo.FindProductTx(tx, id, businessID)
			if err != nil || !product.Active {
				return nil, apierror.E(apierror.KindInvalidLineItem, fmt.Sprintf("line %d product not found or inactive", i+1))
			}
			if product.OnHand < rl.Quantity {
				return nil, apierror.E(apierror.KindInsufficientStock,
					fmt.Sprintf("insufficient stock for %q", product.Name))
			}
			price := productPrice(product, rl.UnitPriceOverride)
			lines = append(lines, resolvedLine{
				itemKind:  model.ItemProduct,
				productID: &product.ID,
				itemName:  product.Name,
				quantity:  rl.Quantity,
				unitPrice: price,
				subtotal:  price.Mul(decimal.NewFromInt(int64(rl.Quantity))).Round(2),
			})
			continue
		}

		id, err := uuid.Parse(*rl.ServiceID)
		if err != nil {
			return nil, apierror.E(apierror.KindInvalidLineItem, fmt.Sprintf("line %d has an invalid service_id", i+1))
		}
		svc, err := s.catalogRepo.FindServiceTx(tx, id, businessID)
		if err != nil || !svc.Active {
			return nil, apierror.E(apierror.KindInvalidLineItem, fmt.Sprintf("line %d service not found or inactive", i+1))
		}
		price := servicePrice(svc, rl.UnitPriceOverride)
		lines = append(lines, resolvedLine{
			itemKind:  model.ItemService,
			serviceID: &svc.ID,
			itemName:  svc.Name,
			quantity:  rl.Quantity,
			unitPrice: price,
			subtotal:  price.Mul(decimal.NewFromInt(int64(rl.Quantity))).Round(2),
		})
	}
	return lines, nil
}

func productPrice(p *model.Product, override *decimal.Decimal) decimal.Decimal {
	switch {
	case override != nil:
		return *override
	case p.DiscountPrice != nil:
		return *p.DiscountPrice
	case p.PromoPrice != nil:
		return *p.PromoPrice
	default:
		return p.ListPrice
	}
}

func servicePrice(s *model.Service, override *decimal.Decimal) decimal.Decimal {
	switch {
	case override != nil:
		return *override
	case s.DiscountPrice != nil:
		return *s.DiscountPrice
	default:
		return s.Price
	}
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.E(apierror.KindNotFound, "sale not found")
	}
	resp := saleToResponse(sale)
	return &resp, nil
}

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	sales, total, err := s.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func saleToResponse(s *model.Sale) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:            s.ID.String(),
		ShiftID:       s.ShiftID.String(),
		ReceiptKind:   s.ReceiptKind,
		ReceiptNumber: s.ReceiptNumber,
		Subtotal:      s.Subtotal,
		Tax:           s.Tax,
		Total:         s.Total,
		Status:        s.Status,
		IssuedAt:      s.IssuedAt.Format(time.RFC3339),
	}
	for _, line := range s.Lines {
		resp.Lines = append(resp.Lines, dto.SaleLineResponse{
			ItemKind:  line.ItemKind,
			ItemName:  line.ItemName,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		})
	}
	return resp
}
