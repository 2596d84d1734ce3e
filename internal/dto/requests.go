package dto

// ObjectForm - данные формы создания/редактирования объекта.
// Числовые поля приходят из формы строками, поэтому объявлены nullable-типами.
type ObjectForm struct {
	TitleDE        string          `json:"title_de"`
	TitleEN        string          `json:"title_en"`
	DescriptionDE  string          `json:"description_de"`
	DescriptionEN  string          `json:"description_en"`
	Type           string          `json:"type"`
	CustomTypeName string          `json:"custom_type_name"`
	SpecialTag     string          `json:"special_tag"`
	Latitude       NullableFloat64 `json:"latitude"`
	Longitude      NullableFloat64 `json:"longitude"`
	LocationText   string          `json:"location_text"`
	Price          NullableFloat64 `json:"price"`
	Status         string          `json:"status"`
	PlaqueAllowed  bool            `json:"plaque_allowed"`
	PlaqueMaxChars NullableInt64   `json:"plaque_max_chars"`
	ImageURLs      []string        `json:"image_urls"`
	BookingURL     string          `json:"booking_url"`
	ShareURL       string          `json:"share_url"`
	MapURL         string          `json:"map_url"`
}

// ReportForm - данные формы отчёта хранителя.
type ReportForm struct {
	ObjectID     int64    `json:"object_id" binding:"required"`
	StatusType   string   `json:"status_type" binding:"required"`
	StatusNote   string   `json:"status_note"`
	LocationText string   `json:"location_text"`
	ImageURLs    []string `json:"image_urls"`
	IsPublic     bool     `json:"is_public"`
}

// ProfileUpdateForm - редактирование профиля (админом или самим пользователем).
type ProfileUpdateForm struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Role           string  `json:"role"`
	CompanyName    *string `json:"company_name"`
	CompanyWebsite *string `json:"company_website"`
	GuardianArea   *string `json:"guardian_area"`
	GuardianPhone  *string `json:"guardian_phone"`
}

// PaymentIntentRequest - запрос на создание платёжного intent.
type PaymentIntentRequest struct {
	ObjectID int64   `json:"object_id" binding:"required"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
}

// PaymentConfirmRequest - подтверждение платежа пользователем.
type PaymentConfirmRequest struct {
	ReturnURL string `json:"return_url"`
}
