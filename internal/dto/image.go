package dto

// AddImagesRequest represents a bulk insert of image records
type AddImagesRequest struct {
	Images []ImageInput `json:"images" validate:"required,min=1,max=100,dive"`
}

// ImageInput represents one image record to insert
type ImageInput struct {
	URL         string `json:"url" validate:"required,url"`
	Title       string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// DeleteImagesRequest represents the request to delete image records
type DeleteImagesRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100,dive,uuid"`
}

// UploadImageRequest represents an image capture upload. Data carries the
// base64-encoded image payload produced by the capture client.
type UploadImageRequest struct {
	Data        string `json:"data" validate:"required"`
	ContentType string `json:"contentType" validate:"required,oneof=image/jpeg image/png image/webp"`
	Title       string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
}
