package recipes

type GetLinkResponse struct {
	ShortLink string `json:"short-link"`
}
