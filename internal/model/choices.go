package model

// SkinTone is the user's self-reported skin tone.
type SkinTone string

const (
	SkinToneFair   SkinTone = "FAIR"
	SkinToneLight  SkinTone = "LIGHT"
	SkinToneMedium SkinTone = "MEDIUM"
	SkinToneTan    SkinTone = "TAN"
	SkinToneDeep   SkinTone = "DEEP"
)

// SkinType is used both on users and as a product compatibility marker.
type SkinType string

const (
	SkinTypeOily        SkinType = "OILY"
	SkinTypeDry         SkinType = "DRY"
	SkinTypeCombination SkinType = "COMBINATION"
	SkinTypeSensitive   SkinType = "SENSITIVE"
	SkinTypeNormal      SkinType = "NORMAL"
)

type ProductType string

const (
	ProductTypeFoundation ProductType = "FOUNDATION"
	ProductTypeConcealer  ProductType = "CONCEALER"
	ProductTypePowder     ProductType = "POWDER"
	ProductTypeBlush      ProductType = "BLUSH"
	ProductTypeEyeshadow  ProductType = "EYESHADOW"
	ProductTypeLipstick   ProductType = "LIPSTICK"
	ProductTypeMascara    ProductType = "MASCARA"
	ProductTypeEyeliner   ProductType = "EYELINER"
	ProductTypeSkincare   ProductType = "SKINCARE"
	ProductTypeOther      ProductType = "OTHER"
)

type FinishType string

const (
	FinishTypeMatte   FinishType = "MATTE"
	FinishTypeDewy    FinishType = "DEWY"
	FinishTypeSatin   FinishType = "SATIN"
	FinishTypeGlossy  FinishType = "GLOSSY"
	FinishTypeShimmer FinishType = "SHIMMER"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

type PaymentMethodType string

const (
	PaymentCreditCard     PaymentMethodType = "CREDIT_CARD"
	PaymentPayPal         PaymentMethodType = "PAYPAL"
	PaymentBankTransfer   PaymentMethodType = "BANK_TRANSFER"
	PaymentCashOnDelivery PaymentMethodType = "CASH_ON_DELIVERY"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

var (
	skinTones      = []SkinTone{SkinToneFair, SkinToneLight, SkinToneMedium, SkinToneTan, SkinToneDeep}
	skinTypes      = []SkinType{SkinTypeOily, SkinTypeDry, SkinTypeCombination, SkinTypeSensitive, SkinTypeNormal}
	productTypes   = []ProductType{ProductTypeFoundation, ProductTypeConcealer, ProductTypePowder, ProductTypeBlush, ProductTypeEyeshadow, ProductTypeLipstick, ProductTypeMascara, ProductTypeEyeliner, ProductTypeSkincare, ProductTypeOther}
	finishTypes    = []FinishType{FinishTypeMatte, FinishTypeDewy, FinishTypeSatin, FinishTypeGlossy, FinishTypeShimmer}
	paymentMethods = []PaymentMethodType{PaymentCreditCard, PaymentPayPal, PaymentBankTransfer, PaymentCashOnDelivery}
)

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func (t SkinTone) Valid() bool          { return contains(skinTones, t) }
func (t SkinType) Valid() bool          { return contains(skinTypes, t) }
func (t ProductType) Valid() bool       { return contains(productTypes, t) }
func (t FinishType) Valid() bool        { return contains(finishTypes, t) }
func (m PaymentMethodType) Valid() bool { return contains(paymentMethods, m) }
func (d DiscountType) Valid() bool      { return d == DiscountPercentage || d == DiscountFixed }
