package mail

type MaklerNotificationData struct {
	LeadName   string
	LeadID     string
	Action     string
	NotifiedAt string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string // backoffice inbox for lead notifications
}
