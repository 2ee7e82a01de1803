package postup

// Channel is the delivery channel of a recipient, list, mailing or template
type Channel string

const (
	// ChannelEmail delivers by email
	ChannelEmail Channel = "E"
	// ChannelSMS delivers by text message
	ChannelSMS Channel = "S"
	// ChannelPush delivers by push notification
	ChannelPush Channel = "P"
)

// Channels lists every Channel
var Channels = []Channel{ChannelEmail, ChannelSMS, ChannelPush}

// Validate checks c against Channels
func (c Channel) Validate(required bool) error {
	return OneOf("channel", c, Channels, required)
}

// ClickTrackType controls link tracking in a mailing
type ClickTrackType string

const (
	ClickTrackAll      ClickTrackType = "ALL"
	ClickTrackNone     ClickTrackType = "NONE"
	ClickTrackHTML     ClickTrackType = "HTML"
	ClickTrackUser     ClickTrackType = "USER"
	ClickTrackUserHTML ClickTrackType = "USER_HTML"
)

// ClickTrackTypes lists every ClickTrackType
var ClickTrackTypes = []ClickTrackType{ClickTrackAll, ClickTrackNone, ClickTrackHTML, ClickTrackUser, ClickTrackUserHTML}

// Validate checks t against ClickTrackTypes
func (t ClickTrackType) Validate(required bool) error {
	return OneOf("clickTrackType", t, ClickTrackTypes, required)
}

// OpenTrackType controls open tracking in a mailing
type OpenTrackType string

const (
	OpenTrackNone OpenTrackType = "NONE"
	OpenTrackHTML OpenTrackType = "HTML"
)

// OpenTrackTypes lists every OpenTrackType
var OpenTrackTypes = []OpenTrackType{OpenTrackNone, OpenTrackHTML}

// Validate checks t against OpenTrackTypes
func (t OpenTrackType) Validate(required bool) error {
	return OneOf("openTrackType", t, OpenTrackTypes, required)
}

// ABSplitRemainingType is the metric that picks an A/B test winner
type ABSplitRemainingType string

const (
	ABSplitClicks         ABSplitRemainingType = "CLICKS"
	ABSplitOpens          ABSplitRemainingType = "OPENS"
	ABSplitConversionRate ABSplitRemainingType = "CONVERSION_RATE"
	ABSplitContentShares  ABSplitRemainingType = "CONTENT_SHARES"
	ABSplitReferredClicks ABSplitRemainingType = "REFERRED_CLICKS"
	ABSplitNone           ABSplitRemainingType = "NONE"
)

// ABSplitRemainingTypes lists every ABSplitRemainingType
var ABSplitRemainingTypes = []ABSplitRemainingType{
	ABSplitClicks, ABSplitOpens, ABSplitConversionRate, ABSplitContentShares, ABSplitReferredClicks, ABSplitNone,
}

// Validate checks t against ABSplitRemainingTypes
func (t ABSplitRemainingType) Validate(required bool) error {
	return OneOf("aBSplitRemainingType", t, ABSplitRemainingTypes, required)
}

// ABSplitRemainingTimes lists the hours PostUp accepts before sending the
// winning A/B variant to the remaining recipients.
var ABSplitRemainingTimes = []int{1, 3, 6, 12, 18, 24, 36, 48, 72, 96}

// ContentType is the format of a content library file
type ContentType string

const (
	ContentHTML ContentType = "HTML"
	ContentText ContentType = "TEXT"
)

// ContentTypes lists every ContentType
var ContentTypes = []ContentType{ContentHTML, ContentText}

// Validate checks t against ContentTypes
func (t ContentType) Validate(required bool) error {
	return OneOf("type", t, ContentTypes, required)
}

// MailingPart selects the body sent by a test mailing
type MailingPart string

const (
	PartText MailingPart = "TEXT"
	PartHTML MailingPart = "HTML"
)

// MailingParts lists every MailingPart
var MailingParts = []MailingPart{PartText, PartHTML}

// Validate checks p against MailingParts
func (p MailingPart) Validate(required bool) error {
	return OneOf("part", p, MailingParts, required)
}

// CustomFieldType is the storage type of a custom field
type CustomFieldType string

const (
	FieldSingleCharacter CustomFieldType = "SINGLE_CHARACTER"
	FieldTextShort       CustomFieldType = "TEXT_SHORT"
	FieldTextMedium      CustomFieldType = "TEXT_MEDIUM"
	FieldTextLong        CustomFieldType = "TEXT_LONG"
	FieldWholeNumber     CustomFieldType = "WHOLE_NUMBER"
	FieldBigInteger      CustomFieldType = "BIG_INTEGER"
	FieldDecimalNumber   CustomFieldType = "DECIMAL_NUMBER"
	FieldCurrency        CustomFieldType = "CURRENCY"
	FieldDateTime        CustomFieldType = "DATE_TIME"
	FieldBit             CustomFieldType = "BIT"
	FieldYesNo           CustomFieldType = "YES_NO"
)

// CustomFieldTypes lists every CustomFieldType
var CustomFieldTypes = []CustomFieldType{
	FieldSingleCharacter, FieldTextShort, FieldTextMedium, FieldTextLong, FieldWholeNumber,
	FieldBigInteger, FieldDecimalNumber, FieldCurrency, FieldDateTime, FieldBit, FieldYesNo,
}

// Validate checks t against CustomFieldTypes
func (t CustomFieldType) Validate(required bool) error {
	return OneOf("type", t, CustomFieldTypes, required)
}

// ImportStatus filters import statistics
type ImportStatus string

const (
	ImportDone ImportStatus = "DONE"
	ImportOpen ImportStatus = "OPEN"
)

// ImportStatuses lists every ImportStatus
var ImportStatuses = []ImportStatus{ImportDone, ImportOpen}

// Validate checks s against ImportStatuses
func (s ImportStatus) Validate(required bool) error {
	return OneOf("status", s, ImportStatuses, required)
}

// Delimiter separates columns in an import file
type Delimiter string

const (
	DelimiterComma     Delimiter = "Comma Separated"
	DelimiterSemicolon Delimiter = "Semicolon Separated"
	DelimiterTab       Delimiter = "Tab Delimited"
	DelimiterPipe      Delimiter = "Pipe Delimited"
)

// Delimiters lists every Delimiter
var Delimiters = []Delimiter{DelimiterComma, DelimiterSemicolon, DelimiterTab, DelimiterPipe}

// Validate checks d against Delimiters
func (d Delimiter) Validate(required bool) error {
	return OneOf("delimiter", d, Delimiters, required)
}

// SubscriptionStatus is the state of a list subscription
type SubscriptionStatus string

const (
	SubscriptionNormal SubscriptionStatus = "NORMAL"
	SubscriptionUnsub  SubscriptionStatus = "UNSUB"
)

// SubscriptionStatuses lists every SubscriptionStatus
var SubscriptionStatuses = []SubscriptionStatus{SubscriptionNormal, SubscriptionUnsub}

// Validate checks s against SubscriptionStatuses
func (s SubscriptionStatus) Validate(required bool) error {
	return OneOf("status", s, SubscriptionStatuses, required)
}

// RecipientStatus is the global status of a recipient: normal,
// unsubscribed or held.
type RecipientStatus string

const (
	RecipientNormal       RecipientStatus = "N"
	RecipientUnsubscribed RecipientStatus = "U"
	RecipientHeld         RecipientStatus = "H"
)

// RecipientStatuses lists every RecipientStatus
var RecipientStatuses = []RecipientStatus{RecipientNormal, RecipientUnsubscribed, RecipientHeld}

// Validate checks s against RecipientStatuses
func (s RecipientStatus) Validate(required bool) error {
	return OneOf("status", s, RecipientStatuses, required)
}

// EngagementType selects the recipient engagement report
type EngagementType string

const (
	EngagementUnsubscribes EngagementType = "unsubscribes"
	EngagementSubscribes   EngagementType = "subscribes"
	EngagementClicks       EngagementType = "clicks"
	EngagementOpens        EngagementType = "opens"
)

// EngagementTypes lists every EngagementType
var EngagementTypes = []EngagementType{EngagementUnsubscribes, EngagementSubscribes, EngagementClicks, EngagementOpens}

// Validate checks t against EngagementTypes
func (t EngagementType) Validate(required bool) error {
	return OneOf("type", t, EngagementTypes, required)
}

// PrivacyScope selects which recipient data a privacy deletion removes
type PrivacyScope string

const (
	ScopeAll          PrivacyScope = "all"
	ScopeForget       PrivacyScope = "forget"
	ScopeLocation     PrivacyScope = "location"
	ScopeContact      PrivacyScope = "contact"
	ScopeDemographics PrivacyScope = "demographics"
	ScopeOrigin       PrivacyScope = "origin"
)

// PrivacyScopes lists every PrivacyScope
var PrivacyScopes = []PrivacyScope{ScopeAll, ScopeForget, ScopeLocation, ScopeContact, ScopeDemographics, ScopeOrigin}

// Validate checks s against PrivacyScopes
func (s PrivacyScope) Validate(required bool) error {
	return OneOf("scope", s, PrivacyScopes, required)
}

// SegmentOperator compares a targeting condition column with its value
type SegmentOperator string

const (
	OperatorEquals    SegmentOperator = "="
	OperatorNotEquals SegmentOperator = "!="
)

// SegmentOperators lists every SegmentOperator
var SegmentOperators = []SegmentOperator{OperatorEquals, OperatorNotEquals}

// Validate checks o against SegmentOperators
func (o SegmentOperator) Validate(required bool) error {
	return OneOf("conditionOperator", o, SegmentOperators, required)
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
