package dto

type UploadRequest struct {
	AnimationFormat  string `validate:"omitempty,oneof=webp gif"`
	TransparentColor string `validate:"omitempty,hexadecimal,len=8"`
	MaxWidth         int    `validate:"omitempty,min=16,max=2048"`
	MaxHeight        int    `validate:"omitempty,min=16,max=2048"`
}
