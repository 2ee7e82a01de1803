package postup

// MailingContent is the message body of a mailing or send template.
type MailingContent struct {
	Subject                  string `json:"subject,omitempty"`
	PreviewText              string `json:"previewText,omitempty"`
	Charset                  string `json:"charset,omitempty"`
	Encoding                 string `json:"encoding,omitempty"`
	FromEmail                string `json:"fromEmail,omitempty"`
	FromName                 string `json:"fromName,omitempty"`
	ToEmail                  string `json:"toEmail,omitempty"`
	ToName                   string `json:"toName,omitempty"`
	ReplyToEmail             string `json:"replyToEmail,omitempty"`
	ReplyToName              string `json:"replyToName,omitempty"`
	HTMLBody                 string `json:"htmlBody,omitempty"`
	TextBody                 string `json:"textBody,omitempty"`
	UnsubContentID           int64  `json:"unsubContentId,omitempty"`
	ReplyContentID           int64  `json:"replyContentId,omitempty"`
	HeaderContentID          int64  `json:"headerContentId,omitempty"`
	FooterContentID          int64  `json:"footerContentId,omitempty"`
	ForwardToFriendContentID int64  `json:"forwardToFriendContentId,omitempty"`
}

// ABTestContent is the alternative variant of an A/B tested mailing.
type ABTestContent struct {
	OriginalSubject string `json:"originalSubject,omitempty"`
	FromEmail       string `json:"fromEmail,omitempty"`
	FromName        string `json:"fromName,omitempty"`
	ReplyToEmail    string `json:"replyToEmail,omitempty"`
	ReplyToName     string `json:"replyToName,omitempty"`
	HTMLBody        string `json:"htmlBody,omitempty"`
	TextBody        string `json:"textBody,omitempty"`
}

// TargetingCondition restricts a segment to recipients whose column
// compares to Value with Operator.
type TargetingCondition struct {
	Column   string          `json:"conditionColumn"`
	Operator SegmentOperator `json:"conditionOperator"`
	Value    any             `json:"conditionValue"`
}

// conditionValueTypes are the scalar types a condition value may hold.
var conditionValueTypes = []string{"string", "int", "int64", "float64", "bool"}

// Validate checks that every part of the condition is set and usable
func (tc TargetingCondition) Validate() error {
	return firstError(
		NoNull(optional(tc.Column), optional(string(tc.Operator)), tc.Value),
		tc.Operator.Validate(true),
		TypeOf("conditionValue", tc.Value, conditionValueTypes, true),
	)
}

// Segment targets a subset of a mailing's lists.
type Segment struct {
	AssociativeString string               `json:"associativeString"`
	Collection        TargetingCollection `json:"targetingConditionsCollection"`
}

// TargetingCollection wraps the conditions of a Segment
type TargetingCollection struct {
	Conditions []TargetingCondition `json:"targetingConditions"`
}

// NewSegment validates conditions and builds a Segment.
func NewSegment(associativeString string, conditions []TargetingCondition) (*Segment, error) {
	segment := &Segment{
		AssociativeString: associativeString,
		Collection:        TargetingCollection{Conditions: []TargetingCondition{}},
	}
	for _, condition := range conditions {
		if err := condition.Validate(); err != nil {
			return nil, err
		}
		segment.Collection.Conditions = append(segment.Collection.Conditions, condition)
	}
	return segment, nil
}

// TriggerRecipient is a recipient of a triggered mailing. Tags are
// "key=value" merge values.
type TriggerRecipient struct {
	Address    string   `json:"address"`
	ExternalID string   `json:"externalId,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// NewTriggerRecipient builds a TriggerRecipient with tags encoded the same
// way as demographics.
func NewTriggerRecipient(address string, tags map[string]string, externalID string) TriggerRecipient {
	return TriggerRecipient{
		Address:    address,
		ExternalID: externalID,
		Tags:       DemographicsToString(tags),
	}
}

// optional returns nil for an empty string so it reads as absent.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
