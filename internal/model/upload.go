package model

// UploadResult ответ /upload со списком сохранённых файлов.
// Старые версии API отдавали поле urls вместо files.
type UploadResult struct {
	Files []string `json:"files"`
	URLs  []string `json:"urls"`
}

// FileURLs возвращает ссылки независимо от версии ответа
func (r UploadResult) FileURLs() []string {
	if len(r.Files) > 0 {
		return r.Files
	}
	return r.URLs
}
