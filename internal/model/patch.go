package model

// ProfilePatch はプロフィールの部分更新ペイロードを表す。
// 各フィールドは独立に省略可能で、nilは「変更しない」を意味する。
// 空文字列の指定は「空文字列に上書きする」であり、nilとは区別される。
type ProfilePatch struct {
	Email             *string
	Name              *string
	Bio               *string
	PhoneNumber       *string
	Location          *string
	ProfilePictureURL *string
	Theme             *string
	Template          *string
	CustomURL         *string
	JobTitle          *string
	FacebookURL       *string
	TwitterURL        *string
	InstagramURL      *string
	LinkedinURL       *string
}

// IsEmpty は全フィールドが未指定かどうかを返す。
func (p *ProfilePatch) IsEmpty() bool {
	return p.Email == nil && p.Name == nil && p.Bio == nil &&
		p.PhoneNumber == nil && p.Location == nil && p.ProfilePictureURL == nil &&
		p.Theme == nil && p.Template == nil && p.CustomURL == nil &&
		p.JobTitle == nil && p.FacebookURL == nil && p.TwitterURL == nil &&
		p.InstagramURL == nil && p.LinkedinURL == nil
}

// Apply は永続化済みプロフィールにパッチを適用し、置換用の完全なレコードを返す。
// 指定されたフィールドのみ上書きし、nilのフィールドは元の値を維持する。
// 空のパッチを適用した結果は元のレコードと等しい（冪等）。
// baseは変更しない。
func (p *ProfilePatch) Apply(base *UserProfile) *UserProfile {
	merged := *base

	if p.Email != nil {
		merged.Email = cloneString(p.Email)
	}
	if p.Name != nil {
		merged.Name = cloneString(p.Name)
	}
	if p.Bio != nil {
		merged.Bio = cloneString(p.Bio)
	}
	if p.PhoneNumber != nil {
		merged.PhoneNumber = cloneString(p.PhoneNumber)
	}
	if p.Location != nil {
		merged.Location = cloneString(p.Location)
	}
	if p.ProfilePictureURL != nil {
		merged.ProfilePictureURL = cloneString(p.ProfilePictureURL)
	}
	if p.Theme != nil {
		merged.Theme = cloneString(p.Theme)
	}
	if p.Template != nil {
		merged.Template = *p.Template
	}
	if p.CustomURL != nil {
		merged.CustomURL = cloneString(p.CustomURL)
	}
	if p.JobTitle != nil {
		merged.JobTitle = cloneString(p.JobTitle)
	}
	if p.FacebookURL != nil {
		merged.FacebookURL = cloneString(p.FacebookURL)
	}
	if p.TwitterURL != nil {
		merged.TwitterURL = cloneString(p.TwitterURL)
	}
	if p.InstagramURL != nil {
		merged.InstagramURL = cloneString(p.InstagramURL)
	}
	if p.LinkedinURL != nil {
		merged.LinkedinURL = cloneString(p.LinkedinURL)
	}

	return &merged
}

// SettingsPatch は設定の部分更新ペイロードを表す。
// 各フィールドは独立に省略可能で、nilは「変更しない」を意味する。
type SettingsPatch struct {
	ExchangeContacts *bool
	SaveContact      *bool
	CallMe           *bool
	EmailMe          *bool
	SocialMedia      *bool
	Template         *string
}

// IsEmpty は全フィールドが未指定かどうかを返す。
func (p *SettingsPatch) IsEmpty() bool {
	return p.ExchangeContacts == nil && p.SaveContact == nil &&
		p.CallMe == nil && p.EmailMe == nil && p.SocialMedia == nil &&
		p.Template == nil
}

// Apply は永続化済み設定にパッチを適用し、置換用の完全なレコードを返す。
// 指定されたフィールドのみ上書きし、nilのフィールドは元の値を維持する。
// baseは変更しない。
func (p *SettingsPatch) Apply(base *UserSetting) *UserSetting {
	merged := *base

	if p.ExchangeContacts != nil {
		merged.ExchangeContacts = *p.ExchangeContacts
	}
	if p.SaveContact != nil {
		merged.SaveContact = *p.SaveContact
	}
	if p.CallMe != nil {
		merged.CallMe = *p.CallMe
	}
	if p.EmailMe != nil {
		merged.EmailMe = *p.EmailMe
	}
	if p.SocialMedia != nil {
		merged.SocialMedia = *p.SocialMedia
	}
	if p.Template != nil {
		merged.Template = *p.Template
	}

	return &merged
}

// cloneString は文字列ポインタの値コピーを返す。
// パッチとレコードがポインタを共有しないようにする。
func cloneString(s *string) *string {
	v := *s
	return &v
}
