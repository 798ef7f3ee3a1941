package handlers

// CreatePaymentRequest is the body for POST /api/packages/payment.
type CreatePaymentRequest struct {
	PackageID uint   `json:"packageId"`
	BankCode  string `json:"bankCode,omitempty"`
}

// PackageInput is the admin create/update body for a posting package.
type PackageInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Duration    int      `json:"duration"`
	PostLimit   int      `json:"postLimit"`
	Features    []string `json:"features"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// CreatePostRequest is the body for POST /api/posts.
type CreatePostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Address     string `json:"address"`
}
