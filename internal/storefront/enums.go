package storefront

// LinkCategory is a closed set of important-link categories.
type LinkCategory string

// Important link categories.
const (
	LinkOrderTracking LinkCategory = "order_tracking"
	LinkContactUs     LinkCategory = "contact_us"
	LinkBlog          LinkCategory = "blog"
	LinkAbout         LinkCategory = "about"
	LinkShipping      LinkCategory = "shipping"
	LinkFAQ           LinkCategory = "faq"
)

// LinkCategories lists every category in matching precedence order.
var LinkCategories = []LinkCategory{
	LinkOrderTracking,
	LinkContactUs,
	LinkBlog,
	LinkAbout,
	LinkShipping,
	LinkFAQ,
}

// Valid reports whether c is a known category.
func (c LinkCategory) Valid() bool {
	for _, known := range LinkCategories {
		if c == known {
			return true
		}
	}
	return false
}

// SocialPlatform is a closed set of social networks.
type SocialPlatform string

// Supported social platforms.
const (
	PlatformFacebook  SocialPlatform = "facebook"
	PlatformInstagram SocialPlatform = "instagram"
	PlatformTwitter   SocialPlatform = "twitter"
	PlatformTikTok    SocialPlatform = "tiktok"
	PlatformYouTube   SocialPlatform = "youtube"
	PlatformLinkedIn  SocialPlatform = "linkedin"
	PlatformPinterest SocialPlatform = "pinterest"
	PlatformSnapchat  SocialPlatform = "snapchat"
)

// SocialPlatforms lists every supported platform.
var SocialPlatforms = []SocialPlatform{
	PlatformFacebook,
	PlatformInstagram,
	PlatformTwitter,
	PlatformTikTok,
	PlatformYouTube,
	PlatformLinkedIn,
	PlatformPinterest,
	PlatformSnapchat,
}

// Valid reports whether p is a known platform.
func (p SocialPlatform) Valid() bool {
	for _, known := range SocialPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// Quality is a categorical richness rating for one field.
type Quality string

// Quality ratings.
const (
	QualityGood    Quality = "good"
	QualityBasic   Quality = "basic"
	QualityMissing Quality = "missing"
)

// Valid reports whether q is a known rating.
func (q Quality) Valid() bool {
	return q == QualityGood || q == QualityBasic || q == QualityMissing
}

// QualityField names a profile field that receives a content quality rating.
type QualityField string

// Rated fields.
const (
	FieldBrandDescription   QualityField = "brand_description"
	FieldProductCatalog     QualityField = "product_catalog"
	FieldFAQs               QualityField = "faqs"
	FieldContactInfo        QualityField = "contact_info"
	FieldSocialHandles      QualityField = "social_handles"
	FieldPrivacyPolicy      QualityField = "privacy_policy"
	FieldReturnRefundPolicy QualityField = "return_refund_policy"
)

// QualityFields lists every rated field.
var QualityFields = []QualityField{
	FieldBrandDescription,
	FieldProductCatalog,
	FieldFAQs,
	FieldContactInfo,
	FieldSocialHandles,
	FieldPrivacyPolicy,
	FieldReturnRefundPolicy,
}

// Valid reports whether f is a rated field.
func (f QualityField) Valid() bool {
	for _, known := range QualityFields {
		if f == known {
			return true
		}
	}
	return false
}
