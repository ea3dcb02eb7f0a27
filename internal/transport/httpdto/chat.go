package httpdto

import "storefront-chat/internal/domain/message"

type CreateRoomRequest struct {
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	CustomerName  string `json:"customer_name" binding:"required"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type EnquiryRequest struct {
	Products       []EnquiryProductRequest `json:"products" binding:"required,min=1"`
	GeneralMessage string                  `json:"general_message"`
	ContactDetails string                  `json:"contact_details"`
}

type EnquiryProductRequest struct {
	Name         string `json:"name" binding:"required"`
	CategorySlug string `json:"category_slug"`
	ProductSlug  string `json:"product_slug"`
	Notes        string `json:"notes"`
}

func (r EnquiryRequest) ToDomain() message.EnquiryData {
	products := make([]message.EnquiryProduct, 0, len(r.Products))
	for _, p := range r.Products {
		products = append(products, message.EnquiryProduct{
			Name:         p.Name,
			CategorySlug: p.CategorySlug,
			ProductSlug:  p.ProductSlug,
			Notes:        p.Notes,
		})
	}
	return message.EnquiryData{
		Products:       products,
		GeneralMessage: r.GeneralMessage,
		ContactDetails: r.ContactDetails,
	}
}

type MarkReadRequest struct {
	MessageIDs []string `json:"message_ids"`
}

type PresenceRequest struct {
	RoomID    string `json:"room_id"`
	UserAgent string `json:"user_agent"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
