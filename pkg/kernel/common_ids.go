package kernel

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

type SessionID string

func NewSessionID(id string) SessionID { return SessionID(id) }
func (s SessionID) String() string     { return string(s) }
func (s SessionID) IsEmpty() bool      { return string(s) == "" }

type QuestionID string

func NewQuestionID(id string) QuestionID { return QuestionID(id) }
func (q QuestionID) String() string      { return string(q) }
func (q QuestionID) IsEmpty() bool       { return string(q) == "" }

type GapID string

func NewGapID(id string) GapID { return GapID(id) }
func (g GapID) String() string { return string(g) }
func (g GapID) IsEmpty() bool  { return string(g) == "" }
