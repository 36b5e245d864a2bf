package controller

import (
	"course_market_backend/internal/service"
	"course_market_backend/internal/util"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

type TransactionController struct {
	transactions *service.TransactionService
	payments     *service.PaymentService
}

func NewTransactionController(transactions *service.TransactionService, payments *service.PaymentService) *TransactionController {
	return &TransactionController{transactions: transactions, payments: payments}
}

type PaymentIntentRequest struct {
	// 最小币种单位
	Amount   json.RawMessage `json:"amount" swaggertype:"integer"`
	Currency string          `json:"currency"`
}

// CreatePaymentIntent godoc
// @Summary 创建支付意图
// @Description amount 为最小币种单位的正整数；实际币种由 payment.currency_mode 决定
// @Tags 交易
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body PaymentIntentRequest true "金额与币种"
// @Success 200 {object} util.Response{data=map[string]string}
// @Failure 400 {object} util.Response
// @Router /transactions/stripe/payment-intent [post]
func (c *TransactionController) CreatePaymentIntent(ctx *gin.Context) {
	var req PaymentIntentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ErrorWithDetail(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	secret, err := c.payments.CreatePaymentIntent(ctx.Request.Context(), req.Amount, req.Currency)
	if err != nil {
		if _, ok := util.IsValidationError(err); ok {
			util.HandleServiceError(ctx, err)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, "Payment intent created", gin.H{"clientSecret": secret})
}

// CreateTransaction godoc
// @Summary 记录购买
// @Description 写入交易、生成初始学习进度并追加报名；同一 transactionId 重复提交返回已有记录
// @Tags 交易
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateTransactionInput true "交易信息"
// @Success 201 {object} util.Response{data=service.PurchaseResult}
// @Success 200 {object} util.Response{data=service.PurchaseResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /transactions [post]
func (c *TransactionController) CreateTransaction(ctx *gin.Context) {
	var req service.CreateTransactionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ErrorWithDetail(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	result, err := c.transactions.CreateTransaction(ctx.Request.Context(), &req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	if !result.Created {
		util.Success(ctx, "Transaction already recorded", result)
		return
	}
	util.Created(ctx, "Purchased Course successfully", result)
}

// ListTransactions godoc
// @Summary 交易列表
// @Description 只能查询自己的交易，userId 为空时返回调用方的交易
// @Tags 交易
// @Produce json
// @Security ApiKeyAuth
// @Param userId query string false "用户ID"
// @Success 200 {object} util.Response{data=[]model.Transaction}
// @Failure 403 {object} util.Response
// @Router /transactions [get]
func (c *TransactionController) ListTransactions(ctx *gin.Context) {
	txns, err := c.transactions.ListTransactions(ctx.Request.Context(), ctx.Query("userId"), callerID(ctx))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, "Transactions retrieved successfully", txns)
}
