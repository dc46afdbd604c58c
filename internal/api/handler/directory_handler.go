package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/safeledger/dashboard/internal/core/ports"
)

// DirectoryHandler serves the management screens and model retraining.
type DirectoryHandler struct {
	directory ports.DirectoryService
}

func NewDirectoryHandler(directory ports.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// --- Companies ---

// ListCompanies handles GET /api/companies.
//
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Security     SessionCookie
// @Success      200  {array}   companyResponse
// @Failure      401  {object}  map[string]bool
// @Failure      502  {object}  errorResponse
// @Router       /api/companies [get]
func (h *DirectoryHandler) ListCompanies(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	companies, err := h.directory.ListCompanies(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCompanyResponses(companies))
}

// CreateCompany handles POST /api/companies.
//
// @Summary      Create a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      companyRequest  true  "Company"
// @Success      201   {object}  companyResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/companies [post]
func (h *DirectoryHandler) CreateCompany(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req companyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	company, err := h.directory.CreateCompany(c.Request().Context(), sess, ports.CompanyInput{CompanyName: req.CompanyName})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, companyResponse{ID: company.ID, CompanyName: company.CompanyName})
}

// UpdateCompany handles PATCH /api/companies/:id.
//
// @Summary      Update a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      int             true  "Company id"
// @Param        body  body      companyRequest  true  "Company"
// @Success      200   {object}  companyResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/companies/{id} [patch]
func (h *DirectoryHandler) UpdateCompany(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req companyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	company, err := h.directory.UpdateCompany(c.Request().Context(), sess, id, ports.CompanyInput{CompanyName: req.CompanyName})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, companyResponse{ID: company.ID, CompanyName: company.CompanyName})
}

// DeleteCompany handles DELETE /api/companies/:id.
//
// @Summary      Delete a company
// @Tags         companies
// @Security     SessionCookie
// @Param        id   path  int  true  "Company id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Router       /api/companies/{id} [delete]
func (h *DirectoryHandler) DeleteCompany(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.directory.DeleteCompany(c.Request().Context(), sess, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Customers ---

// ListCustomers handles GET /api/customers.
//
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Security     SessionCookie
// @Success      200  {array}   customerResponse
// @Failure      401  {object}  map[string]bool
// @Router       /api/customers [get]
func (h *DirectoryHandler) ListCustomers(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	customers, err := h.directory.ListCustomers(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	out := make([]customerResponse, 0, len(customers))
	for _, cu := range customers {
		out = append(out, toCustomerResponse(cu))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateCustomer handles POST /api/customers.
//
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      customerRequest  true  "Customer"
// @Success      201   {object}  customerResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/customers [post]
func (h *DirectoryHandler) CreateCustomer(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req customerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	customer, err := h.directory.CreateCustomer(c.Request().Context(), sess, toCustomerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCustomerResponse(*customer))
}

// UpdateCustomer handles PATCH /api/customers/:id. Only the fields present in the
// body are changed; an empty password is left unchanged.
//
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      int              true  "Customer id"
// @Param        body  body      updateCustomerRequest  true  "Customer fields to change"
// @Success      200   {object}  customerResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/customers/{id} [patch]
func (h *DirectoryHandler) UpdateCustomer(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateCustomerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	customer, err := h.directory.UpdateCustomer(c.Request().Context(), sess, id, toCustomerPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCustomerResponse(*customer))
}

// DeleteCustomer handles DELETE /api/customers/:id.
//
// @Summary      Delete a customer
// @Tags         customers
// @Security     SessionCookie
// @Param        id  path  int  true  "Customer id"
// @Success      204
// @Router       /api/customers/{id} [delete]
func (h *DirectoryHandler) DeleteCustomer(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.directory.DeleteCustomer(c.Request().Context(), sess, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Accountants ---

// ListAccountants handles GET /api/accountants.
//
// @Summary      List accountants
// @Tags         accountants
// @Produce      json
// @Security     SessionCookie
// @Success      200  {array}   accountantResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/accountants [get]
func (h *DirectoryHandler) ListAccountants(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	accountants, err := h.directory.ListAccountants(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	out := make([]accountantResponse, 0, len(accountants))
	for _, a := range accountants {
		out = append(out, toAccountantResponse(a))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateAccountant handles POST /api/accountants.
//
// @Summary      Create an accountant
// @Tags         accountants
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      accountantRequest  true  "Accountant"
// @Success      201   {object}  accountantResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/accountants [post]
func (h *DirectoryHandler) CreateAccountant(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req accountantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	accountant, err := h.directory.CreateAccountant(c.Request().Context(), sess, toAccountantInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAccountantResponse(*accountant))
}

// UpdateAccountant handles PATCH /api/accountants/:id.
//
// @Summary      Update an accountant
// @Tags         accountants
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      int                true  "Accountant id"
// @Param        body  body      accountantRequest  true  "Accountant"
// @Success      200   {object}  accountantResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/accountants/{id} [patch]
func (h *DirectoryHandler) UpdateAccountant(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req accountantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	accountant, err := h.directory.UpdateAccountant(c.Request().Context(), sess, id, toAccountantInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountantResponse(*accountant))
}

// DeleteAccountant handles DELETE /api/accountants/:id.
//
// @Summary      Delete an accountant
// @Tags         accountants
// @Security     SessionCookie
// @Param        id  path  int  true  "Accountant id"
// @Success      204
// @Router       /api/accountants/{id} [delete]
func (h *DirectoryHandler) DeleteAccountant(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.directory.DeleteAccountant(c.Request().Context(), sess, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Retrain handles POST /api/retrain.
//
// @Summary      Retrain the suspicious posting model
// @Tags         model
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      retrainRequest   false  "Company to retrain for; empty retrains globally"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/retrain [post]
func (h *DirectoryHandler) Retrain(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req retrainRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}
	msg, err := h.directory.Retrain(c.Request().Context(), sess, string(req.CompanyID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}
