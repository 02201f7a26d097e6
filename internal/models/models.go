package models

import "time"

// Raw rows, as stored in the CRM tables. Nullable columns are pointers.

type LeadRow struct {
	ID                    string     `db:"id" json:"id"`
	Name                  *string    `db:"name" json:"name"`
	Lastname              *string    `db:"lastname" json:"lastname"`
	Company               *string    `db:"company" json:"company"`
	Stage                 *string    `db:"stage" json:"stage"`
	AnnualRevenue         *string    `db:"annual_revenue" json:"annual_revenue"`
	Owner                 *string    `db:"owner" json:"owner"`
	Origin                *string    `db:"origin" json:"origin"`
	MktCanal              *string    `db:"mkt_canal" json:"mkt_canal"`
	CreatedAt             *time.Time `db:"created_at" json:"created_at"`
	LastActivityDate      *time.Time `db:"last_activity_date" json:"last_activity_date"`
	Score                 *float64   `db:"score" json:"score"`
	Email                 *string    `db:"email" json:"email"`
	Phone                 *string    `db:"phone" json:"phone"`
	Segment               *string    `db:"segment" json:"segment"`
	IsActive              *bool      `db:"is_active" json:"is_active"`
	ScoreLabel            *string    `db:"score_label" json:"score_label"`
	QualificationProgress *float64   `db:"qualification_progress" json:"qualification_progress"`
	Tags                  *string    `db:"tags" json:"tags"`
}

type OpportunityRow struct {
	ID           string     `db:"id" json:"id"`
	Name         *string    `db:"name" json:"name"`
	Account      *string    `db:"account" json:"account"`
	Company      *string    `db:"company" json:"company"`
	Stage        *string    `db:"stage" json:"stage"`
	Value        *string    `db:"value" json:"value"`
	Owner        *string    `db:"owner" json:"owner"`
	CloseDate    *time.Time `db:"close_date" json:"close_date"`
	CreatedAt    *time.Time `db:"created_at" json:"created_at"`
	Score        *float64   `db:"score" json:"score"`
	Origin       *string    `db:"origin" json:"origin"`
	Tipo         *string    `db:"tipo" json:"tipo"`
	Decisor      *string    `db:"decisor" json:"decisor"`
	LastActivity *string    `db:"last_activity" json:"last_activity"`
	Tag          *string    `db:"tag" json:"tag"`
}

type ActivityRow struct {
	ID            string     `db:"id" json:"id"`
	Type          *string    `db:"type" json:"type"`
	Subject       *string    `db:"subject" json:"subject"`
	Label         *string    `db:"label" json:"label"`
	EntityID      *string    `db:"entity_id" json:"entity_id"`
	EntityType    *string    `db:"entity_type" json:"entity_type"`
	RelatedToName *string    `db:"related_to_name" json:"related_to_name"`
	ContactName   *string    `db:"contact_name" json:"contact_name"`
	Owner         *string    `db:"owner" json:"owner"`
	AssignedTo    *string    `db:"assigned_to" json:"assigned_to"`
	DueDate       *time.Time `db:"due_date" json:"due_date"`
	Date          *string    `db:"date" json:"date"`
	CreatedAt     *time.Time `db:"created_at" json:"created_at"`
	CompletedAt   *time.Time `db:"completed_at" json:"completed_at"`
	Status        *string    `db:"status" json:"status"`
	Priority      *string    `db:"priority" json:"priority"`
	Description   *string    `db:"description" json:"description"`
}

type AccountRow struct {
	ID            string     `db:"id" json:"id"`
	Name          *string    `db:"name" json:"name"`
	Sector        *string    `db:"sector" json:"sector"`
	AnnualRevenue *string    `db:"annual_revenue" json:"annual_revenue"`
	Employees     *int64     `db:"employees" json:"employees"`
	Owner         *string    `db:"owner" json:"owner"`
	BillingCity   *string    `db:"billing_city" json:"billing_city"`
	BillingState  *string    `db:"billing_state" json:"billing_state"`
	Phone         *string    `db:"phone" json:"phone"`
	Email         *string    `db:"email" json:"email"`
	Website       *string    `db:"website" json:"website"`
	CNPJ          *string    `db:"cnpj" json:"cnpj"`
	Type          *string    `db:"type" json:"type"`
	Stage         *string    `db:"stage" json:"stage"`
	Contacts      *int64     `db:"contacts" json:"contacts"`
	CreatedAt     *time.Time `db:"created_at" json:"created_at"`
}

type ContactRow struct {
	ID        string     `db:"id" json:"id"`
	Name      *string    `db:"name" json:"name"`
	LastName  *string    `db:"last_name" json:"last_name"`
	Role      *string    `db:"role" json:"role"`
	Company   *string    `db:"company" json:"company"`
	Account   *string    `db:"account" json:"account"`
	Email     *string    `db:"email" json:"email"`
	Phone     *string    `db:"phone" json:"phone"`
	Mobile    *string    `db:"mobile" json:"mobile"`
	Stage     *string    `db:"stage" json:"stage"`
	Owner     *string    `db:"owner" json:"owner"`
	Origin    *string    `db:"origin" json:"origin"`
	CreatedAt *time.Time `db:"created_at" json:"created_at"`
}

// Normalized entities served to the dashboard. Dates are YYYY-MM-DD or "-".

type Lead struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Company               string  `json:"company"`
	Stage                 string  `json:"stage"`
	Value                 float64 `json:"value"`
	Owner                 string  `json:"owner"`
	Source                string  `json:"source"`
	CreatedAt             string  `json:"createdAt"`
	LastActivity          string  `json:"lastActivity"`
	Score                 float64 `json:"score"`
	Email                 string  `json:"email"`
	Phone                 string  `json:"phone"`
	Segment               string  `json:"segment"`
	IsActive              bool    `json:"isActive"`
	ScoreLabel            string  `json:"scoreLabel"`
	QualificationProgress float64 `json:"qualificationProgress"`
	Tags                  string  `json:"tags"`
}

type Opportunity struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Account      string  `json:"account"`
	Company      string  `json:"company"`
	Stage        string  `json:"stage"`
	Value        float64 `json:"value"`
	Probability  float64 `json:"probability"`
	Owner        string  `json:"owner"`
	CloseDate    string  `json:"closeDate"`
	CreatedAt    string  `json:"createdAt"`
	Score        float64 `json:"score"`
	Origin       string  `json:"origin"`
	Type         string  `json:"tipo"`
	Decisor      string  `json:"decisor"`
	LastActivity string  `json:"lastActivity"`
	Tag          string  `json:"tag"`
}

type ActivityType string

const (
	ActivityTask        ActivityType = "task"
	ActivityAppointment ActivityType = "appointment"
	ActivityCall        ActivityType = "call"
	ActivityNote        ActivityType = "note"
	ActivityMessage     ActivityType = "message"
	ActivityEmail       ActivityType = "email"
)

type ActivityStatus string

const (
	StatusCompleted ActivityStatus = "completed"
	StatusOverdue   ActivityStatus = "overdue"
	StatusPending   ActivityStatus = "pending"
)

type Activity struct {
	ID            string         `json:"id"`
	Type          ActivityType   `json:"type"`
	Title         string         `json:"title"`
	RelatedTo     string         `json:"relatedTo"`
	RelatedToName string         `json:"relatedToName"`
	EntityType    string         `json:"entityType"`
	Owner         string         `json:"owner"`
	Date          string         `json:"date"`
	Status        ActivityStatus `json:"status"`
	Priority      string         `json:"priority"`
	Description   string         `json:"description"`
}

type Account struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Industry     string  `json:"industry"`
	Revenue      float64 `json:"revenue"`
	Employees    int64   `json:"employees"`
	Owner        string  `json:"owner"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email"`
	Website      string  `json:"website"`
	CNPJ         string  `json:"cnpj"`
	Type         string  `json:"type"`
	AccountStage string  `json:"accountStage"`
	Contacts     int64   `json:"contacts"`
	CreatedAt    string  `json:"createdAt"`
}

type Contact struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Company   string `json:"company"`
	Account   string `json:"account"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Stage     string `json:"stage"`
	Owner     string `json:"owner"`
	Origin    string `json:"origin"`
	CreatedAt string `json:"createdAt"`
}

// Derived views.

type MonthlyRevenue struct {
	Month         string `json:"month"`
	Leads         int    `json:"leads"`
	Opportunities int    `json:"oportunidades"`
	Revenue       int64  `json:"receita"`
	Conversion    int    `json:"conversao"`
}

type StageTotal struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
	Value int64  `json:"value"`
}

type SourceTotal struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
	Value  int64  `json:"value"`
}

type ActivityTypeTotal struct {
	Type  string `json:"type"`
	Key   string `json:"key"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

type WeeklyActivity struct {
	Day          string `json:"day"`
	Tasks        int    `json:"tarefas"`
	Appointments int    `json:"compromissos"`
	Calls        int    `json:"ligacoes"`
	Emails       int    `json:"emails"`
	Notes        int    `json:"notas"`
	Messages     int    `json:"mensagens"`
}

type FunnelStage struct {
	Stage string `json:"stage"`
	Value int    `json:"value"`
}

type Meta struct {
	TotalLeads         int       `json:"totalLeads"`
	TotalOpportunities int       `json:"totalOpportunities"`
	TotalActivities    int       `json:"totalActivities"`
	TotalAccounts      int       `json:"totalAccounts"`
	TotalContacts      int       `json:"totalContacts"`
	FetchedAt          time.Time `json:"fetchedAt"`
}

// Report is kept in the payload shape; reports are a UI concern and always empty here.
type Report struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Category  string `json:"category"`
	Author    string `json:"author"`
	UpdatedAt string `json:"updatedAt"`
	Views     int    `json:"views"`
	Favorite  bool   `json:"favorite"`
}

// DashData is the /dash/data payload.
type DashData struct {
	Leads            []Lead              `json:"leads"`
	Opportunities    []Opportunity       `json:"opportunities"`
	Activities       []Activity          `json:"activities"`
	Accounts         []Account           `json:"accounts"`
	Contacts         []Contact           `json:"contacts"`
	MonthlyRevenue   []MonthlyRevenue    `json:"monthlyRevenue"`
	PipelineByStage  []StageTotal        `json:"pipelineByStage"`
	LeadsBySource    []SourceTotal       `json:"leadsBySource"`
	ActivityByType   []ActivityTypeTotal `json:"activityByType"`
	WeeklyActivities []WeeklyActivity    `json:"weeklyActivities"`
	ConversionFunnel []FunnelStage       `json:"conversionFunnel"`
	Reports          []Report            `json:"reports"`
	Meta             Meta                `json:"meta"`
}
