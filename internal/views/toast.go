package views

// Notice codes carried in the notice query parameter after a redirect
const (
	NoticeCreated         = "created"
	NoticeDuplicate       = "duplicate"
	NoticeCreateFailed    = "create_failed"
	NoticeKeywordRequired = "keyword_required"
	NoticeUpdated         = "updated"
	NoticeUpdateFailed    = "update_failed"
	NoticeDeleted         = "deleted"
	NoticeDeleteFailed    = "delete_failed"
)

// Toast is a transient notification
type Toast struct {
	Kind    string // success or error
	Message string
}

var toasts = map[string]Toast{
	NoticeCreated:         {Kind: "success", Message: "키워드가 추가되었습니다"},
	NoticeDuplicate:       {Kind: "error", Message: "이미 등록된 키워드입니다"},
	NoticeCreateFailed:    {Kind: "error", Message: "키워드 추가에 실패했습니다"},
	NoticeKeywordRequired: {Kind: "error", Message: "키워드를 입력하세요"},
	NoticeUpdated:         {Kind: "success", Message: "키워드가 수정되었습니다"},
	NoticeUpdateFailed:    {Kind: "error", Message: "키워드 수정에 실패했습니다"},
	NoticeDeleted:         {Kind: "success", Message: "키워드가 삭제되었습니다"},
	NoticeDeleteFailed:    {Kind: "error", Message: "키워드 삭제에 실패했습니다"},
}

// ToastFor returns the toast of a notice code, or nil for unknown codes
func ToastFor(code string) *Toast {
	t, ok := toasts[code]
	if !ok {
		return nil
	}
	return &t
}
