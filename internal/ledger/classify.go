package ledger

import (
	"strconv"
	"strings"

	"github.com/GregMSThompson/wallet-sync/internal/models"
)

type Category string

const (
	CategoryUtilities        Category = "UTILITIES"
	CategoryPurchases        Category = "PURCHASES"
	CategoryMaintenance      Category = "MAINTENANCE"
	CategoryInventory        Category = "INVENTORY"
	CategoryEquipment        Category = "EQUIPMENT"
	CategoryRenovation       Category = "RENOVATION"
	CategoryMarketing        Category = "MARKETING"
	CategoryTransport        Category = "TRANSPORT"
	CategoryAccounting       Category = "ACCOUNTING"
	CategoryFGTS             Category = "FGTS"
	CategoryINSS             Category = "INSS"
	CategoryThirteenthSalary Category = "THIRTEENTH_SALARY"
	CategoryFourteenthSalary Category = "FOURTEENTH_SALARY"
	CategoryTermination      Category = "TERMINATION"
	CategoryTransportVoucher Category = "TRANSPORT_VOUCHER"
	CategoryMealVoucher      Category = "MEAL_VOUCHER"
	CategoryVacation         Category = "VACATION"
	CategorySalaries         Category = "SALARIES"
	CategoryChange           Category = "CHANGE"
	CategoryTaxes            Category = "TAXES"
	CategoryBankFees         Category = "BANK_FEES"
	CategorySales            Category = "SALES"
	CategoryProducts         Category = "PRODUCTS"
	CategoryDelivery         Category = "DELIVERY"
	CategoryOther            Category = "OTHER"
)

var validCategories = map[Category]bool{
	CategoryUtilities: true, CategoryPurchases: true, CategoryMaintenance: true,
	CategoryInventory: true, CategoryEquipment: true, CategoryRenovation: true,
	CategoryMarketing: true, CategoryTransport: true, CategoryAccounting: true,
	CategoryFGTS: true, CategoryINSS: true, CategoryThirteenthSalary: true,
	CategoryFourteenthSalary: true, CategoryTermination: true, CategoryTransportVoucher: true,
	CategoryMealVoucher: true, CategoryVacation: true, CategorySalaries: true,
	CategoryChange: true, CategoryTaxes: true, CategoryBankFees: true,
	CategorySales: true, CategoryProducts: true, CategoryDelivery: true,
	CategoryOther: true,
}

func ValidCategory(c Category) bool {
	return validCategories[c]
}

// Kind is the finer-grained movement type inferred from the row text.
type Kind string

const (
	KindPixSent          Kind = "PIX_SENT"
	KindPixReceived      Kind = "PIX_RECEIVED"
	KindTransferSent     Kind = "TRANSFER_SENT"
	KindTransferReceived Kind = "TRANSFER_RECEIVED"
	KindCardPayment      Kind = "CARD_PAYMENT"
	KindWithdrawal       Kind = "WITHDRAWAL"
	KindDeposit          Kind = "DEPOSIT"
	KindSalary           Kind = "SALARY"
	KindPayment          Kind = "PAYMENT"
	KindInvestment       Kind = "INVESTMENT"
	KindOtherDebit       Kind = "OTHER_DEBIT"
	KindOtherCredit      Kind = "OTHER_CREDIT"
)

var validKinds = map[Kind]bool{
	KindPixSent: true, KindPixReceived: true, KindTransferSent: true,
	KindTransferReceived: true, KindCardPayment: true, KindWithdrawal: true,
	KindDeposit: true, KindSalary: true, KindPayment: true, KindInvestment: true,
	KindOtherDebit: true, KindOtherCredit: true,
}

// TransactionType collapses a kind into the stored transaction type.
func (k Kind) TransactionType() models.TransactionType {
	switch k {
	case KindPixReceived, KindTransferReceived, KindDeposit, KindSalary, KindOtherCredit:
		return models.TransactionTypeDeposit
	case KindInvestment:
		return models.TransactionTypeInvestment
	default:
		return models.TransactionTypeExpense
	}
}

// Classification is the outcome of running a row through every table.
type Classification struct {
	Category      Category
	Rule          string
	Kind          Kind
	Type          models.TransactionType
	PaymentMethod models.PaymentMethod
}

// Classify runs the category, kind and payment-method tables over
// normalized text.
func (r *Rules) Classify(text string, historicalCode int, debit bool) Classification {
	category, rule := r.ClassifyCategory(text, historicalCode, debit)
	kind := r.InferKind(text, debit)
	return Classification{
		Category:      category,
		Rule:          rule,
		Kind:          kind,
		Type:          kind.TransactionType(),
		PaymentMethod: r.PaymentMethod(kind, text),
	}
}

// ClassifyCategory returns the category and a trace of the rule that
// produced it ("keyword:<rule>:<keyword>", "code:<rule>:<code>" or "default").
func (r *Rules) ClassifyCategory(text string, historicalCode int, debit bool) (Category, string) {
	rules := r.CreditCategories
	if debit {
		rules = r.DebitCategories
	}
	for _, rule := range rules {
		if kw, ok := containsAny(text, rule.Keywords); ok {
			return rule.Category, "keyword:" + rule.Name + ":" + kw
		}
	}

	if debit {
		for _, rule := range r.CodeFallbacks {
			for _, c := range rule.Codes {
				if c == historicalCode {
					return rule.Category, "code:" + rule.Name + ":" + strconv.Itoa(c)
				}
			}
		}
	}

	return CategoryOther, "default"
}

// InferKind walks the kind table honoring each rule's direction.
func (r *Rules) InferKind(text string, debit bool) Kind {
	for _, rule := range r.Kinds {
		if rule.Direction == DirectionDebit && !debit {
			continue
		}
		if rule.Direction == DirectionCredit && debit {
			continue
		}
		if _, ok := containsAny(text, rule.Keywords); ok {
			return rule.Kind
		}
	}
	if debit {
		return KindOtherDebit
	}
	return KindOtherCredit
}

func (r *Rules) PaymentMethod(kind Kind, text string) models.PaymentMethod {
	switch kind {
	case KindPixSent, KindPixReceived:
		return models.PaymentMethodPix
	case KindTransferSent, KindTransferReceived:
		return models.PaymentMethodBankTransfer
	case KindCardPayment:
		if _, ok := containsAny(text, r.CreditCardKeywords); ok {
			return models.PaymentMethodCreditCard
		}
		return models.PaymentMethodDebitCard
	}
	if _, ok := containsAny(text, r.BoletoKeywords); ok {
		return models.PaymentMethodBoleto
	}
	if kind == KindWithdrawal {
		return models.PaymentMethodCash
	}
	return models.PaymentMethodOther
}

// IsDebit trusts any of the bank's debit signals; the raw amount sign is ignored.
func (r *Rules) IsDebit(signIndicator, typeIndicator, text string, historicalCode int) bool {
	if strings.EqualFold(strings.TrimSpace(signIndicator), "D") {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(typeIndicator), "D") {
		return true
	}
	if _, ok := containsAny(text, r.DebitKeywords); ok {
		return true
	}
	return r.debitCodes[historicalCode]
}

// IsBalanceMarker reports whether a description is an informational
// balance row rather than a movement.
func (r *Rules) IsBalanceMarker(description string) bool {
	return equalsAny(NormalizeText(description), r.BalanceMarkers)
}

// IsBalanceSource reports whether a marker row carries the current balance.
func (r *Rules) IsBalanceSource(description string) bool {
	return equalsAny(NormalizeText(description), r.BalanceSources)
}

func equalsAny(s string, list []string) bool {
	for _, v := range list {
		if s == v {
			return true
		}
	}
	return false
}
