package author

// CreateAuthorRequest represents the input for creating a new author.
type CreateAuthorRequest struct {
	Name string `json:"name" form:"name" binding:"required,min=2,max=100"`
	Bio  string `json:"bio" form:"bio" binding:"max=1000"`
}
