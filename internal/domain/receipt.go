package domain

// PublishReceipt is returned by the delivery platform on a successful post.
type PublishReceipt struct {
	TweetID string
}
