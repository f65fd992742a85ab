package dto

// ValidateCouponRequest accepts coupon_code or couponCode
type ValidateCouponRequest struct {
	CouponCode      string `json:"coupon_code,omitempty"`
	CouponCodeCamel string `json:"couponCode,omitempty"`
}

// Code returns whichever spelling was sent
func (r ValidateCouponRequest) Code() string {
	return firstNonEmpty(r.CouponCode, r.CouponCodeCamel)
}

// ValidateCouponResponse is the answer to a coupon check
type ValidateCouponResponse struct {
	Valid           bool   `json:"valid"`
	DiscountPercent int    `json:"discount_percent"`
	Message         string `json:"message"`
}

// ReferralStatsResponse is what a contractor sees about their code
type ReferralStatsResponse struct {
	Username        string `json:"username"`
	Code            string `json:"code"`
	Points          int    `json:"points"`
	TotalSignups    int    `json:"total_signups"`
	DiscountPercent int    `json:"discount_percent"`
}
