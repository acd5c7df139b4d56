package domain

type Post struct {
	Id                  int64     `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Category            Category  `json:"category"`
	CreatedAt           Timestamp `json:"createdAt"`
	UpdatedAt           Timestamp `json:"updatedAt"`
	Owner               string    `json:"owner"`
	OwnerDisplayName    string    `json:"ownerDisplayName"`
	OwnerProfilePicture string    `json:"ownerProfilePicture,omitempty"`
	Media               []Media   `json:"media"`
	LikesCount          int       `json:"likesCount"`
	CommentsCount       int       `json:"commentsCount"`
}

type Comment struct {
	Id                 int64     `json:"id"`
	Content            string    `json:"content"`
	CreatedAt          Timestamp `json:"createdAt"`
	UpdatedAt          Timestamp `json:"updatedAt"`
	Username           string    `json:"username"`
	UserProfilePicture string    `json:"userProfilePicture,omitempty"`
}
