package dto

type CreateEntityRequest struct {
	DisplayName string  `json:"displayName" validate:"required"`
	TaxStatus   string  `json:"taxStatus" validate:"required,oneof=SMALL_BUSINESS STANDARD"`
	TaxID       *string `json:"taxId,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
}

type UpdateEntityRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	TaxStatus   *string `json:"taxStatus,omitempty"`
	TaxID       *string `json:"taxId,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

type EntityResponse struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	TaxStatus   string  `json:"tax_status"`
	TaxID       *string `json:"tax_id,omitempty"`
	Timezone    string  `json:"timezone"`
	CreatedAt   string  `json:"created_at"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required,oneof=INCOME EXPENSE"`
}

type CategoryResponse struct {
	ID        string `json:"id"`
	EntityID  string `json:"entity_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

type RuleCondition struct {
	DescriptionContains []string `json:"description_contains"`
}

type RuleAction struct {
	SetCategoryID     string `json:"setCategoryId,omitempty"`
	SetCategoryByName string `json:"setCategoryByName,omitempty"`
}

type CreateRuleRequest struct {
	Priority  int           `json:"priority"`
	Condition RuleCondition `json:"condition"`
	Action    RuleAction    `json:"action"`
}

type RuleResponse struct {
	ID        string        `json:"id"`
	EntityID  string        `json:"entity_id"`
	Priority  int           `json:"priority"`
	Condition RuleCondition `json:"condition"`
	Action    RuleAction    `json:"action"`
	CreatedAt string        `json:"created_at"`
}
