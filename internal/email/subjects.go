package email

const (
	subjectScheduleNoticeFmt      = "【香盤連絡】%s %s"
	subjectPurchaseOrderFmt       = "【発注書送付】%s %s"
	subjectAvailabilityInquiryFmt = "【出演可否確認】%s"
)
